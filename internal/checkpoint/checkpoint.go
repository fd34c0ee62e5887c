// Package checkpoint persists crawl progress so an interrupted run resumes
// exactly where it stopped.
//
// The state is one JSON document keyed by query, then collection. Each pair
// holds its accumulated papers and a resume value: the URL of the next page
// to load, or the exhaustion sentinel. Papers and resume value commit as one
// atomic file replace, so the checkpoint can never point past a page whose
// records are not on disk.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/scholium/acmgrab/internal/paper"
)

// Exhausted is the literal resume value marking a (query, collection) pair
// as fully crawled. Pairs carrying it are permanently skipped.
const Exhausted = "query_completed"

// PairState is the persisted state of one (query, collection) pair.
type PairState struct {
	Resume string        `json:"ckpt"`
	Papers []paper.Paper `json:"papers"`
}

// ResumeKind classifies how a pair should be (re)entered.
type ResumeKind int

const (
	// FreshStart means the pair has never been visited: start from the
	// query URL.
	FreshStart ResumeKind = iota
	// ResumeAt means a prior run stopped mid-crawl: start from the
	// stored URL.
	ResumeAt
	// Done means the pair was crawled to exhaustion: skip it entirely.
	Done
)

// ResumeTarget is the resume decision for one pair.
type ResumeTarget struct {
	Kind ResumeKind
	URL  string // set only for ResumeAt
}

// Store owns the on-disk crawl state.
type Store struct {
	path  string
	state map[string]map[string]*PairState
}

// Load reads the state file, or starts empty if it does not exist.
func Load(path string) (*Store, error) {
	s := &Store{path: path, state: make(map[string]map[string]*PairState)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading crawl state: %w", err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parsing crawl state: %w", err)
	}
	return s, nil
}

// Resume returns the resume decision for a pair. Absence of any entry means
// a fresh start.
func (s *Store) Resume(query, collection string) ResumeTarget {
	pair := s.pair(query, collection)
	if pair == nil || pair.Resume == "" {
		return ResumeTarget{Kind: FreshStart}
	}
	if pair.Resume == Exhausted {
		return ResumeTarget{Kind: Done}
	}
	return ResumeTarget{Kind: ResumeAt, URL: pair.Resume}
}

// Papers returns the accumulated papers for a pair from prior pages of this
// logical crawl.
func (s *Store) Papers(query, collection string) []paper.Paper {
	pair := s.pair(query, collection)
	if pair == nil {
		return nil
	}
	return pair.Papers
}

// Commit records a processed page: the full accumulator snapshot for the
// pair plus the next resume value, derived from nextURL (empty means the
// pair is exhausted). The whole state document is replaced atomically.
// Committing the same page twice is safe: it rewrites identical state.
func (s *Store) Commit(query, collection string, papers []paper.Paper, nextURL string) error {
	resume := nextURL
	if resume == "" {
		resume = Exhausted
	}

	if s.state[query] == nil {
		s.state[query] = make(map[string]*PairState)
	}
	s.state[query][collection] = &PairState{Resume: resume, Papers: papers}

	return s.write()
}

// Pair identifies one (query, collection) entry for reporting.
type Pair struct {
	Query      string
	Collection string
	State      *PairState
}

// Pairs returns every recorded pair in stable order.
func (s *Store) Pairs() []Pair {
	var out []Pair
	queries := make([]string, 0, len(s.state))
	for q := range s.state {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	for _, q := range queries {
		colls := make([]string, 0, len(s.state[q]))
		for c := range s.state[q] {
			colls = append(colls, c)
		}
		sort.Strings(colls)
		for _, c := range colls {
			out = append(out, Pair{Query: q, Collection: c, State: s.state[q][c]})
		}
	}
	return out
}

// write replaces the state file atomically via temp file + rename.
func (s *Store) write() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding crawl state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tmp-state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing crawl state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing crawl state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replacing crawl state: %w", err)
	}

	success = true
	return nil
}

func (s *Store) pair(query, collection string) *PairState {
	colls, ok := s.state[query]
	if !ok {
		return nil
	}
	return colls[collection]
}
