package query

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testTemplates = `{
	"allfield_query": "https://dl.acm.org/action/doSearch?AllField={query}&SpecifiedLevelConceptID={concept_id}",
	"after_before_year_attrs": "&AfterYear={after_year}&BeforeYear={before_year}",
	"page_crawling_attrs": "&pageSize={page_size}&startPage={start_page}"
}`

func loadTestTemplates(t *testing.T) Templates {
	t.Helper()
	path := filepath.Join(t.TempDir(), "query_templates.json")
	if err := os.WriteFile(path, []byte(testTemplates), 0644); err != nil {
		t.Fatalf("writing templates file: %v", err)
	}
	ts, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	return ts
}

func TestBuild_BaseOnly(t *testing.T) {
	ts := loadTestTemplates(t)

	tmpl, err := ts.Build("allfield_query", nil, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := tmpl.URL("graph retrieval", "119271")
	want := "https://dl.acm.org/action/doSearch?AllField=graph+retrieval&SpecifiedLevelConceptID=119271"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestBuild_WithYearAndPageAttrs(t *testing.T) {
	ts := loadTestTemplates(t)

	tmpl, err := ts.Build("allfield_query", []string{"2020", "2023"}, []string{"50", "3"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := tmpl.URL("gnn", "119606")
	for _, part := range []string{
		"AllField=gnn",
		"SpecifiedLevelConceptID=119606",
		"AfterYear=2020",
		"BeforeYear=2023",
		"pageSize=50",
		"startPage=3",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("URL() = %q, missing %q", got, part)
		}
	}
}

func TestBuild_UnknownTemplate(t *testing.T) {
	ts := loadTestTemplates(t)
	if _, err := ts.Build("nope", nil, nil); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("Build() error = %v, want ErrUnknownTemplate", err)
	}
}

func TestBuild_BadAttrCounts(t *testing.T) {
	ts := loadTestTemplates(t)
	if _, err := ts.Build("allfield_query", []string{"2020"}, nil); err == nil {
		t.Error("Build() with one year value: error = nil, want error")
	}
	if _, err := ts.Build("allfield_query", nil, []string{"20", "0", "extra"}); err == nil {
		t.Error("Build() with three page values: error = nil, want error")
	}
}
