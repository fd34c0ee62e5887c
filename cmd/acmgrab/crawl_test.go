package main

import (
	"testing"

	"github.com/scholium/acmgrab/internal/config"
)

func TestRebase(t *testing.T) {
	raw := config.DefaultBaseURL + "/action/doSearch?AllField=graph&startPage=0"

	if got := rebase(raw, config.DefaultBaseURL); got != raw {
		t.Errorf("default origin changed the URL: %q", got)
	}

	got := rebase(raw, "http://127.0.0.1:8080")
	want := "http://127.0.0.1:8080/action/doSearch?AllField=graph&startPage=0"
	if got != want {
		t.Errorf("rebase() = %q, want %q", got, want)
	}
}

func TestResolvePageSize(t *testing.T) {
	cases := []struct {
		name       string
		flag       int
		pageAttrs  []string
		configured int
		want       int
		wantErr    bool
	}{
		{name: "flag wins", flag: 40, pageAttrs: []string{"25", "0"}, configured: 30, want: 40},
		{name: "page attrs next", pageAttrs: []string{"25", "0"}, configured: 30, want: 25},
		{name: "config next", configured: 30, want: 30},
		{name: "service default", want: 20},
		{name: "odd attr count", pageAttrs: []string{"25"}, wantErr: true},
		{name: "non-numeric size", pageAttrs: []string{"big", "0"}, wantErr: true},
		{name: "zero size", pageAttrs: []string{"0", "0"}, wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := resolvePageSize(c.flag, c.pageAttrs, c.configured)
			if c.wantErr {
				if err == nil {
					t.Fatal("error = nil, want failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != c.want {
				t.Errorf("resolvePageSize() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestValidateYears(t *testing.T) {
	if err := validateYears(nil); err != nil {
		t.Errorf("no years should pass: %v", err)
	}
	if err := validateYears([]string{"2020", "2023"}); err != nil {
		t.Errorf("valid interval rejected: %v", err)
	}
	if err := validateYears([]string{"2020"}); err == nil {
		t.Error("single year accepted")
	}
	if err := validateYears([]string{"twenty", "2023"}); err == nil {
		t.Error("non-numeric year accepted")
	}
}
