// Package analyzer turns an uploaded scan video into resale listings.
package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fogfish/faults"
)

const (
	errReadListings  = faults.Type("analyzer: read listings")
	errParseListings = faults.Type("analyzer: parse listings")
)

// UnknownTitle is used for listings the model returned without a title.
const UnknownTitle = "Unknown_Item"

// Prices holds the three price points suggested for a listing.
type Prices struct {
	Quick  float64 `json:"quick"`
	Market float64 `json:"market"`
	Reach  float64 `json:"reach"`
}

// Listing is one item spotted in the video.
type Listing struct {
	Title       string  `json:"title"`
	Timestamp   float64 `json:"timestamp"`
	VoiceNote   string  `json:"voice_note"`
	Description string  `json:"description"`
	Prices      Prices  `json:"prices"`
	// Image is the cropped product frame, filled in after analysis.
	Image string `json:"image,omitempty"`
}

// Request describes one scan.
type Request struct {
	VideoPath  string
	VideoURL   string
	Platform   string
	Confidence int
}

// Analyzer identifies the items in a scan.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) ([]Listing, error)
}

// CleanJSON strips the markdown code fences models like to wrap JSON in.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseListings decodes a model reply. A reply that is not a JSON list of
// listings yields no listings rather than an error.
func ParseListings(text string) []Listing {
	var listings []Listing
	if err := json.Unmarshal([]byte(CleanJSON(text)), &listings); err != nil {
		return []Listing{}
	}
	for i := range listings {
		if strings.TrimSpace(listings[i].Title) == "" {
			listings[i].Title = UnknownTitle
		}
	}
	return listings
}
