package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/scholium/acmgrab/internal/checkpoint"
	"github.com/scholium/acmgrab/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Record is one paper row together with the (query, collection) pair that
// produced it.
type Record struct {
	ID         string
	Query      string
	Collection string
	Paper      paper.Paper
}

// selectPaperFields contains the standard field list for SELECT queries.
const selectPaperFields = `id, query, collection, title, short_abstract,
	venue, doi, record_type, pub_month, pub_year,
	citation_count, download_count, open_access, authors_json`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Main papers table; open_access is NULL when the listing did
		-- not say either way.
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			collection TEXT NOT NULL,
			title TEXT NOT NULL,
			short_abstract TEXT,
			venue TEXT,
			doi TEXT,
			record_type TEXT NOT NULL,
			pub_month TEXT,
			pub_year INTEGER NOT NULL,
			citation_count TEXT,
			download_count TEXT,
			open_access INTEGER,
			authors_json TEXT
		);

		-- Index for DOI lookups
		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			id,
			title,
			abstract,
			authors_text,
			venue
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromState clears the database and rebuilds it from the crawl state.
// Returns the number of rows inserted.
func (d *DB) RebuildFromState(store *checkpoint.Store) (int, error) {
	if _, err := d.db.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers table: %w", err)
	}
	if _, err := d.db.Exec("DELETE FROM papers_fts"); err != nil {
		return 0, fmt.Errorf("clearing papers_fts table: %w", err)
	}

	papersStmt, err := d.db.Prepare(`
		INSERT INTO papers (
			id, query, collection, title, short_abstract,
			venue, doi, record_type, pub_month, pub_year,
			citation_count, download_count, open_access, authors_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	ftsStmt, err := d.db.Prepare(`
		INSERT INTO papers_fts (id, title, abstract, authors_text, venue)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	count := 0
	for _, pair := range store.Pairs() {
		for i, p := range pair.State.Papers {
			id := fmt.Sprintf("%s|%s|%d", pair.Query, pair.Collection, i)

			var authorsJSON sql.NullString
			if p.Authors != nil {
				data, err := json.Marshal(p.Authors)
				if err != nil {
					return 0, fmt.Errorf("marshaling authors for %s: %w", id, err)
				}
				authorsJSON = sql.NullString{String: string(data), Valid: true}
			}

			year, _ := strconv.Atoi(p.PubYear)
			_, err = papersStmt.Exec(
				id, pair.Query, pair.Collection, p.Title, p.ShortAbstract,
				p.Venue, nullableStrPtr(p.DOI), p.RecordType, p.PubMonth, year,
				nullableStrPtr(p.CitationCount), nullableStrPtr(p.DownloadCount),
				nullableBoolPtr(p.OpenAccess), authorsJSON,
			)
			if err != nil {
				return 0, fmt.Errorf("inserting paper %s: %w", id, err)
			}

			_, err = ftsStmt.Exec(id, p.Title, p.ShortAbstract, formatAuthorsText(p.Authors), p.Venue)
			if err != nil {
				return 0, fmt.Errorf("inserting fts for %s: %w", id, err)
			}
			count++
		}
	}

	return count, nil
}

// formatAuthorsText creates a searchable text representation of authors.
func formatAuthorsText(authors []paper.AuthorRef) string {
	var names []string
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// GetByDOI retrieves a paper by its DOI. Returns nil when absent.
func (d *DB) GetByDOI(doi string) (*Record, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE doi = ?`, doi)
	return scanRecord(row)
}

// Search performs a full-text search and returns matching papers.
func (d *DB) Search(query string, limit int) ([]Record, error) {
	ftsQuery := prepareFTSQuery(query)

	rows, err := d.db.Query(`
		SELECT `+selectPaperFields+`
		FROM papers
		WHERE id IN (SELECT id FROM papers_fts WHERE papers_fts MATCH ?)
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchFilters contains optional filters for SearchWithFilters.
//
// The approach mixes FTS5 (text search) and SQL WHERE (exact/range). Both
// support OR natively, so adding same-type ORs is straightforward.
type SearchFilters struct {
	Keyword    string   // General keyword search across all fields
	Authors    []string // Author names to search for (AND logic, fuzzy prefix matching)
	YearFrom   int      // Minimum publication year (0 = no minimum)
	YearTo     int      // Maximum publication year (0 = no maximum)
	Title      string   // Search in title only (FTS)
	Venue      string   // Filter by venue (SQL LIKE, case-insensitive)
	Collection string   // Exact collection id match (SQL)
	DOI        string   // Exact DOI match (SQL)
	OpenOnly   bool     // Keep only papers flagged open access
}

// SearchWithFilters performs a search with multiple optional filters.
// Returns papers matching ALL specified criteria (AND logic).
func (d *DB) SearchWithFilters(filters SearchFilters, limit int) ([]Record, error) {
	var ftsTerms []string
	var args []interface{}

	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}
	for _, author := range filters.Authors {
		if author != "" {
			ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(author))
		}
	}

	var query string
	if len(ftsTerms) > 0 {
		ftsQuery := strings.Join(ftsTerms, " AND ")
		query = `SELECT ` + selectPaperFields + `
			FROM papers
			WHERE id IN (SELECT id FROM papers_fts WHERE papers_fts MATCH ?)`
		args = append(args, ftsQuery)
	} else {
		query = `SELECT ` + selectPaperFields + ` FROM papers WHERE 1=1`
	}

	if filters.YearFrom > 0 {
		query += " AND pub_year >= ?"
		args = append(args, filters.YearFrom)
	}
	if filters.YearTo > 0 {
		query += " AND pub_year <= ?"
		args = append(args, filters.YearTo)
	}
	if filters.Venue != "" {
		query += " AND venue LIKE ?"
		args = append(args, "%"+filters.Venue+"%")
	}
	if filters.Collection != "" {
		query += " AND collection = ?"
		args = append(args, filters.Collection)
	}
	if filters.DOI != "" {
		query += " AND doi = ?"
		args = append(args, filters.DOI)
	}
	if filters.OpenOnly {
		query += " AND open_access = 1"
	}

	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix
// matching, so "Tim" matches "Timothy".
func prepareAuthorQuery(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return author
	}

	parts := strings.Fields(author)
	var terms []string
	for _, part := range parts {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}

	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}

// ListAll returns all papers in id order, optionally limited.
func (d *DB) ListAll(limit int) ([]Record, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers ORDER BY id`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var abstract, venue, pubMonth sql.NullString
	var doi, citations, downloads, authorsJSON sql.NullString
	var openAccess sql.NullInt64
	var year int

	err := s.Scan(
		&rec.ID, &rec.Query, &rec.Collection, &rec.Paper.Title, &abstract,
		&venue, &doi, &rec.Paper.RecordType, &pubMonth, &year,
		&citations, &downloads, &openAccess, &authorsJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rec.Paper.ShortAbstract = abstract.String
	rec.Paper.Venue = venue.String
	rec.Paper.PubMonth = pubMonth.String
	rec.Paper.PubYear = strconv.Itoa(year)
	rec.Paper.DOI = strPtr(doi)
	rec.Paper.CitationCount = strPtr(citations)
	rec.Paper.DownloadCount = strPtr(downloads)

	if openAccess.Valid {
		oa := openAccess.Int64 != 0
		rec.Paper.OpenAccess = &oa
	}

	if authorsJSON.Valid {
		if err := json.Unmarshal([]byte(authorsJSON.String), &rec.Paper.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors JSON for %s: %w", rec.ID, err)
		}
	}

	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, rows.Err()
}

// nullableStrPtr converts an optional string to sql.NullString. A pointer to
// an empty string stays a non-NULL empty string; only nil becomes NULL.
func nullableStrPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableBoolPtr(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	v := int64(0)
	if *b {
		v = 1
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
