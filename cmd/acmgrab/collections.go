package main

import (
	"fmt"

	"github.com/scholium/acmgrab/internal/collection"
	"github.com/scholium/acmgrab/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the collections available to crawl",
	RunE:  runCollections,
}

// CollectionsResult is the response for the collections command.
type CollectionsResult struct {
	Collections []collection.Collection `json:"collections"`
}

func runCollections(cmd *cobra.Command, args []string) error {
	root, err := config.FindWorkspace(workspaceOverride())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	registry, err := collection.LoadRegistry(config.CollectionsPath(root))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	all := registry.All()
	if humanOutput {
		for _, c := range all {
			fmt.Printf("%-12s %s\n", c.ID, c.ConceptID)
		}
	} else {
		outputJSON(CollectionsResult{Collections: all})
	}

	return nil
}
