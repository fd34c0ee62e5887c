package main

import (
	"fmt"
	"strings"

	"github.com/scholium/acmgrab/internal/config"
	"github.com/scholium/acmgrab/internal/paper"
	"github.com/scholium/acmgrab/internal/storage"
	"github.com/spf13/cobra"
)

var searchFlags struct {
	authors    []string
	yearFrom   int
	yearTo     int
	title      string
	venue      string
	collection string
	doi        string
	openOnly   bool
	limit      int
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceVar(&searchFlags.authors, "author", nil, "Filter by author name (prefix match, repeatable)")
	searchCmd.Flags().IntVar(&searchFlags.yearFrom, "year-from", 0, "Minimum publication year")
	searchCmd.Flags().IntVar(&searchFlags.yearTo, "year-to", 0, "Maximum publication year")
	searchCmd.Flags().StringVar(&searchFlags.title, "title", "", "Search in title only")
	searchCmd.Flags().StringVar(&searchFlags.venue, "venue", "", "Filter by venue substring")
	searchCmd.Flags().StringVar(&searchFlags.collection, "collection", "", "Filter by collection id")
	searchCmd.Flags().StringVar(&searchFlags.doi, "doi", "", "Exact DOI match")
	searchCmd.Flags().BoolVar(&searchFlags.openOnly, "open-access", false, "Only papers flagged open access")
	searchCmd.Flags().IntVar(&searchFlags.limit, "limit", DefaultSearchLimit, "Maximum results")
}

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Search crawled papers in the SQLite mirror",
	Long: `Full-text search over crawled papers.

Searches the SQLite mirror; run 'acmgrab index' first if the state file has
changed since the last rebuild.`,
	RunE: runSearch,
}

// SearchHit is one search result row.
type SearchHit struct {
	Query      string            `json:"query"`
	Collection string            `json:"collection"`
	Title      string            `json:"title"`
	Venue      string            `json:"venue,omitempty"`
	Year       string            `json:"year"`
	DOI        *string           `json:"doi"`
	OpenAccess *bool             `json:"open_access"`
	Authors    []paper.AuthorRef `json:"authors,omitempty"`
}

// SearchResult is the response for the search command.
type SearchResult struct {
	Count int         `json:"count"`
	Hits  []SearchHit `json:"hits"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	root, err := config.FindWorkspace(workspaceOverride())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v (run 'acmgrab index' first)", err)
	}
	defer db.Close()

	filters := storage.SearchFilters{
		Keyword:    strings.Join(args, " "),
		Authors:    searchFlags.authors,
		YearFrom:   searchFlags.yearFrom,
		YearTo:     searchFlags.yearTo,
		Title:      searchFlags.title,
		Venue:      searchFlags.venue,
		Collection: searchFlags.collection,
		DOI:        searchFlags.doi,
		OpenOnly:   searchFlags.openOnly,
	}

	recs, err := db.SearchWithFilters(filters, searchFlags.limit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	result := SearchResult{Count: len(recs), Hits: []SearchHit{}}
	for _, r := range recs {
		result.Hits = append(result.Hits, SearchHit{
			Query:      r.Query,
			Collection: r.Collection,
			Title:      r.Paper.Title,
			Venue:      r.Paper.Venue,
			Year:       r.Paper.PubYear,
			DOI:        r.Paper.DOI,
			OpenAccess: r.Paper.OpenAccess,
			Authors:    r.Paper.Authors,
		})
	}

	if humanOutput {
		if result.Count == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, h := range result.Hits {
			fmt.Printf("%d. %s\n", i+1, truncateString(h.Title, SearchTitleMaxLen))
			line := h.Year
			if h.Venue != "" {
				line = h.Venue + ", " + line
			}
			if authors := formatAuthorsShort(h.Authors, 3); authors != "" {
				line = authors + ". " + line
			}
			fmt.Printf("   %s [%s/%s]\n\n", line, h.Query, h.Collection)
		}
	} else {
		outputJSON(result)
	}

	return nil
}
