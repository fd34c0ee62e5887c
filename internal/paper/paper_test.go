package paper

import (
	"errors"
	"testing"
)

func TestSplitPubDate(t *testing.T) {
	month, year, err := SplitPubDate("March 2021")
	if err != nil {
		t.Fatalf("SplitPubDate() error = %v", err)
	}
	if month != "March" {
		t.Errorf("month = %q, want March", month)
	}
	if year != "2021" {
		t.Errorf("year = %q, want 2021", year)
	}
}

func TestSplitPubDate_Malformed(t *testing.T) {
	cases := []string{"", "March", "12 March 2021", "   "}
	for _, c := range cases {
		if _, _, err := SplitPubDate(c); !errors.Is(err, ErrMalformedDate) {
			t.Errorf("SplitPubDate(%q) error = %v, want ErrMalformedDate", c, err)
		}
	}
}

func TestStripEllipsis(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Graph neural networks are useful ...", "Graph neural networks are useful"},
		{"Graph neural networks are useful …", "Graph neural networks are useful"},
		{"No marker here", "No marker here"},
		{"", ""},
	}
	for _, c := range cases {
		if got := StripEllipsis(c.in); got != c.want {
			t.Errorf("StripEllipsis(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestVenueLabel(t *testing.T) {
	if got := VenueLabel("CHI '21: Proceedings of the 2021 CHI Conference"); got != "CHI '21" {
		t.Errorf("VenueLabel() = %q, want CHI '21", got)
	}
	if got := VenueLabel("TOIS"); got != "TOIS" {
		t.Errorf("VenueLabel() = %q, want TOIS", got)
	}
}

func TestDOISuffix(t *testing.T) {
	doi, ok := DOISuffix("https://dl.acm.org/doi/10.1145/3456789.3456790")
	if !ok {
		t.Fatal("DOISuffix() ok = false, want true")
	}
	if doi != "10.1145/3456789.3456790" {
		t.Errorf("DOISuffix() = %q, want 10.1145/3456789.3456790", doi)
	}
}

func TestDOISuffix_ShortHref(t *testing.T) {
	for _, href := range []string{"", "segment", "trailing//"} {
		if _, ok := DOISuffix(href); ok {
			t.Errorf("DOISuffix(%q) ok = true, want false", href)
		}
	}
}

func TestIsProceedings(t *testing.T) {
	cases := []struct {
		label string
		want  bool
	}{
		{"PROCEEDING", true},
		{"Proceedings", true},
		{"proceeding", true},
		{"RESEARCH-ARTICLE", false},
		{"Short Paper", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsProceedings(c.label); got != c.want {
			t.Errorf("IsProceedings(%q) = %v, want %v", c.label, got, c.want)
		}
	}
}
