package main

import (
	"fmt"
	"os"

	"github.com/scholium/acmgrab/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a crawl workspace",
	Long: `Initialize a crawl workspace in the current directory.

Creates:
  collections.json      # Collection id -> concept id table (edit me)
  query_templates.json  # Named search-URL templates
  export/               # JSONL deliverables land here
  cache/                # SQLite mirror (rebuildable, gitignored)

The crawl state file and author cache are created on first crawl.`,
	RunE: runInit,
}

// defaultCollections seeds the collection table. The concept ids are the
// opaque values the service splices into search URLs; edit the file to match
// the slices you want to crawl.
const defaultCollections = `{
  "sigir": "119271",
  "cikm": "119603",
  "kdd": "119060",
  "wsdm": "120737",
  "recsys": "119771"
}
`

// defaultTemplates mirrors the service's search endpoint. The two *_attrs
// entries are suffixes appended when year or paging attributes are given.
const defaultTemplates = `{
  "allfield_query": "https://dl.acm.org/action/doSearch?AllField={query}&SpecifiedLevelConceptID={concept_id}",
  "title_query": "https://dl.acm.org/action/doSearch?Title={query}&SpecifiedLevelConceptID={concept_id}",
  "after_before_year_attrs": "&AfterYear={after_year}&BeforeYear={before_year}",
  "page_crawling_attrs": "&pageSize={page_size}&startPage={start_page}"
}
`

func runInit(cmd *cobra.Command, args []string) error {
	root := workspaceOverride()
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			exitWithError(ExitError, "getting current directory: %v", err)
		}
		root = cwd
	}

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "directory already contains a crawl workspace")
	}

	if err := config.EnsureLayout(root); err != nil {
		exitWithError(ExitError, "creating workspace layout: %v", err)
	}

	if err := os.WriteFile(config.CollectionsPath(root), []byte(defaultCollections), 0644); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.CollectionsFile, err)
	}
	if err := os.WriteFile(config.TemplatesPath(root), []byte(defaultTemplates), 0644); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.TemplatesFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized crawl workspace in %s\n", root)
		fmt.Printf("Edit %s to pick the collections to crawl.\n", config.CollectionsPath(root))
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
