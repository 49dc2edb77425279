package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n[{\"title\":\"Lamp\"}]\n```": `[{"title":"Lamp"}]`,
		"```\n[]\n```":                         "[]",
		"  [1]  ":                              "[1]",
	}
	for input, want := range cases {
		if got := CleanJSON(input); got != want {
			t.Fatalf("CleanJSON(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseListings(t *testing.T) {
	reply := "```json\n" + `[
  {"title": "Brass Lamp", "timestamp": 2.5, "voice_note": "dent on base", "description": "Vintage lamp", "prices": {"quick": 10, "market": 15, "reach": 20}},
  {"timestamp": 7}
]` + "\n```"
	listings := ParseListings(reply)
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].Title != "Brass Lamp" || listings[0].Timestamp != 2.5 || listings[0].Prices.Market != 15 {
		t.Fatalf("unexpected first listing: %+v", listings[0])
	}
	if listings[1].Title != UnknownTitle {
		t.Fatalf("expected default title, got %q", listings[1].Title)
	}
}

func TestParseListingsMalformedYieldsEmpty(t *testing.T) {
	listings := ParseListings("Sorry, I could not see any items.")
	if listings == nil || len(listings) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", listings)
	}
}

func TestFileAnalyzerReadsListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dummy.json")
	if err := os.WriteFile(path, []byte(`[{"title":"Kettle","timestamp":1}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	listings, err := FileAnalyzer{Path: path}.Analyze(context.Background(), Request{Platform: "eBay"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(listings) != 1 || listings[0].Title != "Kettle" {
		t.Fatalf("unexpected listings: %+v", listings)
	}
}

func TestFileAnalyzerErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := (FileAnalyzer{Path: filepath.Join(dir, "missing.json")}).Analyze(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := (FileAnalyzer{Path: bad}).Analyze(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}

func TestFileAnalyzerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileAnalyzer{Path: "unused", Delay: time.Hour}.Analyze(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
