package analyzer

import (
	"context"
	"encoding/json"
	"os"
	"time"
)

// FileAnalyzer replays listings from a JSON file. It backs demo mode, where
// the scan must succeed without network access.
type FileAnalyzer struct {
	Path  string
	Delay time.Duration
}

// Analyze waits for Delay and then returns the file's listings.
func (a FileAnalyzer) Analyze(ctx context.Context, req Request) ([]Listing, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, errReadListings.New(err)
	}
	var listings []Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, errParseListings.New(err)
	}
	for i := range listings {
		if listings[i].Title == "" {
			listings[i].Title = UnknownTitle
		}
	}
	return listings, nil
}
