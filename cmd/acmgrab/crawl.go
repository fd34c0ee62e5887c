package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/scholium/acmgrab/internal/authorcache"
	"github.com/scholium/acmgrab/internal/browse"
	"github.com/scholium/acmgrab/internal/checkpoint"
	"github.com/scholium/acmgrab/internal/collection"
	"github.com/scholium/acmgrab/internal/config"
	"github.com/scholium/acmgrab/internal/crawl"
	"github.com/scholium/acmgrab/internal/extract"
	"github.com/scholium/acmgrab/internal/query"
	"github.com/spf13/cobra"
)

var crawlFlags struct {
	queries         []string
	template        string
	collections     []string
	years           []string
	pageAttrs       []string
	pageSize        int
	statePath       string
	authorCachePath string
	collectionsFile string
	templatesFile   string
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringSliceVarP(&crawlFlags.queries, "queries", "q", nil, "Search queries to crawl (required)")
	crawlCmd.Flags().StringVar(&crawlFlags.template, "template", "allfield_query", "Named query template to use")
	crawlCmd.Flags().StringSliceVar(&crawlFlags.collections, "collections", []string{"all"}, "Collection ids to crawl, or 'all'")
	crawlCmd.Flags().StringSliceVar(&crawlFlags.years, "years", nil, "Publication year interval: AFTER,BEFORE")
	crawlCmd.Flags().StringSliceVar(&crawlFlags.pageAttrs, "page", nil, "Explicit paging attributes: PAGE_SIZE,START_PAGE")
	crawlCmd.Flags().IntVar(&crawlFlags.pageSize, "page-size", 0, "Records per result page (default from config, then 20)")
	crawlCmd.Flags().StringVar(&crawlFlags.statePath, "state", "", "Crawl state file (default: workspace crawl_state.json)")
	crawlCmd.Flags().StringVar(&crawlFlags.authorCachePath, "author-cache", "", "Author cache file (default: workspace author_cache.json)")
	crawlCmd.Flags().StringVar(&crawlFlags.collectionsFile, "collections-file", "", "Collections table (default: workspace collections.json)")
	crawlCmd.Flags().StringVar(&crawlFlags.templatesFile, "templates-file", "", "Query templates file (default: workspace query_templates.json)")
	crawlCmd.MarkFlagRequired("queries")
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl search result listings, resuming from the last checkpoint",
	Long: `Crawl every (query, collection) pair, page by page.

Progress commits to the state file after each result page, so an interrupted
run picks up from the next uncommitted page. Pairs that were crawled to
exhaustion in a previous run are skipped.

All inputs are validated before the first page is requested: an unknown
template, an unknown collection id, or a malformed year interval aborts
without any navigation.`,
	RunE: runCrawl,
}

// CrawlPairResult summarizes one pair after the run.
type CrawlPairResult struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	Papers     int    `json:"papers"`
	Done       bool   `json:"done"`
}

// CrawlResult is the response for the crawl command.
type CrawlResult struct {
	Status string            `json:"status"`
	Pairs  []CrawlPairResult `json:"pairs"`
}

func runCrawl(cmd *cobra.Command, args []string) error {
	root, err := config.FindWorkspace(workspaceOverride())
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	statePath := orDefault(crawlFlags.statePath, config.StatePath(root))
	cachePath := orDefault(crawlFlags.authorCachePath, config.AuthorCachePath(root))
	collectionsFile := orDefault(crawlFlags.collectionsFile, config.CollectionsPath(root))
	templatesFile := orDefault(crawlFlags.templatesFile, config.TemplatesPath(root))

	// Fail fast: every input is resolved and validated before the first
	// page request.
	registry, err := collection.LoadRegistry(collectionsFile)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	collections, err := registry.Select(crawlFlags.collections)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(collections) == 0 {
		exitWithError(ExitError, "no collections selected")
	}

	templates, err := query.LoadTemplates(templatesFile)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := validateYears(crawlFlags.years); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	pageSize, err := resolvePageSize(crawlFlags.pageSize, crawlFlags.pageAttrs, cfg.PageSize)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	tmpl, err := templates.Build(crawlFlags.template, crawlFlags.years, crawlFlags.pageAttrs)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	store, err := checkpoint.Load(statePath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	cache, err := authorcache.Load(cachePath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	session := newSession(cfg)
	logf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
	crawler := &crawl.Crawler{
		Session: session,
		Store:   store,
		Extractor: &extract.Extractor{
			Session:  session,
			Resolver: &extract.AuthorResolver{Session: session, Cache: cache},
			Logf:     logf,
		},
		PageSize: pageSize,
		Logf:     logf,
	}

	origin := baseURL(cfg)
	var pairs []crawl.Pair
	for _, q := range crawlFlags.queries {
		for _, c := range collections {
			pairs = append(pairs, crawl.Pair{
				Query:      q,
				Collection: c.ID,
				URL:        rebase(tmpl.URL(q, c.ConceptID), origin),
			})
		}
	}

	if err := crawler.Run(cmd.Context(), pairs); err != nil {
		// Committed pages survive: the message tells the operator the
		// run is resumable as is.
		var structural *extract.StructuralError
		if errors.As(err, &structural) || errors.Is(err, crawl.ErrResultListMissing) {
			exitWithError(ExitCrawlError, "%v (state committed through the last full page; re-run to resume)", err)
		}
		exitWithError(ExitError, "%v (state committed through the last full page; re-run to resume)", err)
	}

	var results []CrawlPairResult
	for _, p := range pairs {
		results = append(results, CrawlPairResult{
			Query:      p.Query,
			Collection: p.Collection,
			Papers:     len(store.Papers(p.Query, p.Collection)),
			Done:       store.Resume(p.Query, p.Collection).Kind == checkpoint.Done,
		})
	}

	if humanOutput {
		for _, r := range results {
			state := "in progress"
			if r.Done {
				state = "done"
			}
			fmt.Printf("%s / %s: %d papers (%s)\n", r.Query, r.Collection, r.Papers, state)
		}
	} else {
		outputJSON(CrawlResult{Status: "crawled", Pairs: results})
	}

	return nil
}

func newSession(cfg *config.GlobalConfig) *browse.HTTPSession {
	var opts []browse.HTTPOption
	ua := cfg.UserAgent
	if v := os.Getenv("ACMGRAB_USER_AGENT"); v != "" {
		ua = v
	}
	if ua != "" {
		opts = append(opts, browse.WithUserAgent(ua))
	}
	if cfg.RatePerSec > 0 {
		opts = append(opts, browse.WithRateLimit(cfg.RatePerSec))
	}
	if cfg.SettleSeconds > 0 {
		opts = append(opts, browse.WithSettleDelay(time.Duration(cfg.SettleSeconds)*time.Second))
	}
	return browse.NewHTTPSession(opts...)
}

// baseURL resolves the search origin: environment override first, then
// global config, then the service itself.
func baseURL(cfg *config.GlobalConfig) string {
	if v := os.Getenv("ACMGRAB_BASE_URL"); v != "" {
		return v
	}
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return config.DefaultBaseURL
}

// rebase moves a template-produced URL onto the configured origin, so a crawl
// can point at a mirror without editing the templates file.
func rebase(raw, origin string) string {
	if origin == config.DefaultBaseURL {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	o, err := url.Parse(origin)
	if err != nil {
		return raw
	}
	u.Scheme = o.Scheme
	u.Host = o.Host
	return u.String()
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func validateYears(years []string) error {
	if len(years) == 0 {
		return nil
	}
	if len(years) != 2 {
		return fmt.Errorf("--years needs exactly two values (AFTER BEFORE), got %d", len(years))
	}
	for _, y := range years {
		if _, err := strconv.Atoi(y); err != nil {
			return fmt.Errorf("malformed year %q", y)
		}
	}
	return nil
}

// resolvePageSize picks the page size the crawl should assume: the explicit
// flag, then the size carried in --page, then the config default.
func resolvePageSize(flag int, pageAttrs []string, configured int) (int, error) {
	if flag > 0 {
		return flag, nil
	}
	if len(pageAttrs) > 0 {
		if len(pageAttrs) != 2 {
			return 0, fmt.Errorf("--page needs exactly two values (PAGE_SIZE START_PAGE), got %d", len(pageAttrs))
		}
		size, err := strconv.Atoi(pageAttrs[0])
		if err != nil || size <= 0 {
			return 0, fmt.Errorf("malformed page size %q", pageAttrs[0])
		}
		return size, nil
	}
	if configured > 0 {
		return configured, nil
	}
	return crawl.DefaultPageSize, nil
}
