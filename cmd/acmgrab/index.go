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

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the SQLite mirror from the crawl state",
	Long: `Rebuild the SQLite query database from the crawl state file.

The database is ephemeral: run this after a crawl (or after pulling a state
file from elsewhere) to refresh it.`,
	RunE: runIndex,
}

// IndexResult is the response for the index command.
type IndexResult struct {
	Status string `json:"status"`
	Papers int    `json:"papers"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	root, err := config.FindWorkspace(workspaceOverride())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	store, err := checkpoint.Load(config.StatePath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	dbPath := config.DBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromState(store)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d papers\n", count)
	} else {
		outputJSON(IndexResult{Status: "rebuilt", Papers: count})
	}

	return nil
}
