package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scholium/acmgrab/internal/checkpoint"
	"github.com/scholium/acmgrab/internal/config"
	"github.com/scholium/acmgrab/internal/storage"
	"github.com/spf13/cobra"
)

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default: workspace export/)")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write per-pair JSONL files from the crawl state",
	Long: `Write one JSONL file per (query, collection) pair from the crawl state.

Files are named <slug-of-query>__<collection>.jsonl and replaced atomically,
so exporting mid-crawl always yields complete files.`,
	RunE: runExport,
}

// ExportFile is one written deliverable.
type ExportFile struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	Papers     int    `json:"papers"`
	Path       string `json:"path"`
}

// ExportResult is the response for the export command.
type ExportResult struct {
	Status string       `json:"status"`
	Files  []ExportFile `json:"files"`
}

func runExport(cmd *cobra.Command, args []string) error {
	root, err := config.FindWorkspace(workspaceOverride())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	store, err := checkpoint.Load(config.StatePath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	outDir := exportOut
	if outDir == "" {
		outDir = config.ExportPath(root)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		exitWithError(ExitError, "creating output directory: %v", err)
	}

	result := ExportResult{Status: "exported", Files: []ExportFile{}}
	for _, pair := range store.Pairs() {
		path := filepath.Join(outDir, storage.PairFileName(pair.Query, pair.Collection))
		if err := storage.WritePapers(path, pair.State.Papers); err != nil {
			exitWithError(ExitError, "exporting (%s, %s): %v", pair.Query, pair.Collection, err)
		}
		result.Files = append(result.Files, ExportFile{
			Query:      pair.Query,
			Collection: pair.Collection,
			Papers:     len(pair.State.Papers),
			Path:       path,
		})
	}

	if humanOutput {
		if len(result.Files) == 0 {
			fmt.Println("Nothing to export: no crawl state yet.")
			return nil
		}
		for _, f := range result.Files {
			fmt.Printf("Wrote %s (%d papers)\n", f.Path, f.Papers)
		}
	} else {
		outputJSON(result)
	}

	return nil
}
