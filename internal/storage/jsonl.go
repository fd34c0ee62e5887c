// Package storage handles paper persistence in JSONL and SQLite formats.
//
// The crawl state file remains the source of truth; JSONL exports are the
// shareable deliverable and the SQLite database is an ephemeral mirror that
// can always be rebuilt from state.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scholium/acmgrab/internal/paper"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines
// (1MB per line). Abstracts keep records well under this.
const MaxJSONLLineCapacity = 1024 * 1024

// ReadPapers reads all papers from a JSONL file. A missing file reads as
// empty.
func ReadPapers(path string) ([]paper.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening papers file: %w", err)
	}
	defer f.Close()

	var papers []paper.Paper
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p paper.Paper
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		papers = append(papers, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading papers file: %w", err)
	}

	return papers, nil
}

// WritePapers writes all papers to a JSONL file, replacing existing content.
// The file is replaced atomically so a crash never leaves a truncated export.
func WritePapers(path string, papers []paper.Paper) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-papers-*.jsonl")
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

	for i, p := range papers {
		data, err := json.Marshal(p)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding paper %d: %w", i, err)
		}
		data = append(data, '\n')

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("writing paper %d: %w", i, err)
		}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing papers file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing papers file: %w", err)
	}

	success = true
	return nil
}

// FindByDOI searches papers by DOI. Papers with an absent or blank DOI never
// match.
func FindByDOI(papers []paper.Paper, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, p := range papers {
		if p.DOI != nil && *p.DOI == doi {
			return i, true
		}
	}
	return -1, false
}

// PairFileName derives an export file name from a (query, collection) pair.
// Queries can carry spaces and quotes, so the query part is slugged;
// collection ids are already filename-safe.
func PairFileName(query, collection string) string {
	return slug(query) + "__" + collection + ".jsonl"
}

func slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
