package main

import (
	"fmt"

	"github.com/scholium/acmgrab/internal/checkpoint"
	"github.com/scholium/acmgrab/internal/config"
	"github.com/scholium/acmgrab/internal/crawl"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show crawl progress per (query, collection) pair",
	RunE:  runStatus,
}

// PairStatus is one pair's progress line.
type PairStatus struct {
	Query          string `json:"query"`
	Collection     string `json:"collection"`
	Papers         int    `json:"papers"`
	PagesCommitted int    `json:"pages_committed"`
	Done           bool   `json:"done"`
	ResumeURL      string `json:"resume_url,omitempty"`
}

// StatusResult is the response for the status command.
type StatusResult struct {
	StateFile string       `json:"state_file"`
	Pairs     []PairStatus `json:"pairs"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := config.FindWorkspace(workspaceOverride())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	statePath := config.StatePath(root)
	store, err := checkpoint.Load(statePath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	result := StatusResult{StateFile: statePath, Pairs: []PairStatus{}}
	for _, pair := range store.Pairs() {
		papers := len(pair.State.Papers)
		status := PairStatus{
			Query:      pair.Query,
			Collection: pair.Collection,
			Papers:     papers,
			// An estimate: the service default page size governs how
			// many records each commit carried.
			PagesCommitted: (papers + crawl.DefaultPageSize - 1) / crawl.DefaultPageSize,
		}
		switch target := store.Resume(pair.Query, pair.Collection); target.Kind {
		case checkpoint.Done:
			status.Done = true
		case checkpoint.ResumeAt:
			status.ResumeURL = target.URL
		}
		result.Pairs = append(result.Pairs, status)
	}

	if humanOutput {
		if len(result.Pairs) == 0 {
			fmt.Println("No crawl state yet.")
			return nil
		}
		for _, p := range result.Pairs {
			state := "in progress"
			if p.Done {
				state = "done"
			}
			fmt.Printf("%s / %s: %d papers over %d pages (%s)\n",
				p.Query, p.Collection, p.Papers, p.PagesCommitted, state)
		}
	} else {
		outputJSON(result)
	}

	return nil
}
