// Package main provides the acmgrab CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// workspaceFlag overrides workspace resolution for all commands.
var workspaceFlag string

func main() {
	// A .env in the invocation directory can carry ACMGRAB_WORKSPACE and
	// friends; absence is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "acmgrab",
	Short: "Resumable crawler for digital-library search listings",
	Long: `acmgrab walks paginated search result listings, extracts paper records
with their authors, and checkpoints progress after every page so an
interrupted crawl resumes exactly where it stopped.

Crawled papers live in a single JSON state file per workspace, with JSONL
exports as the shareable deliverable and an ephemeral SQLite database for
fast queries. All commands output JSON by default for easy integration
with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "Workspace directory (default: $ACMGRAB_WORKSPACE, then cwd, then global config)")
	rootCmd.Version = Version
}

// workspaceOverride merges the --workspace flag with the environment.
func workspaceOverride() string {
	if workspaceFlag != "" {
		return workspaceFlag
	}
	return os.Getenv("ACMGRAB_WORKSPACE")
}
