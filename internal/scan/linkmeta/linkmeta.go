// Package linkmeta reads the Open Graph preview of a pasted video link.
package linkmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnsupportedURL is returned for links that are not absolute http(s) URLs.
var ErrUnsupportedURL = errors.New("linkmeta: unsupported url")

const (
	fetchTimeout = 10 * time.Second
	maxPageBytes = 2 << 20
)

// Preview is what a video page says about itself.
type Preview struct {
	URL         string
	Title       string
	Description string
	Thumbnail   string
	Video       string
}

// Fetcher downloads pages and extracts previews.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a fetcher using client. When client is nil the fetcher
// refuses loopback, private and link-local targets, including redirects.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = guardedClient()
	}
	return &Fetcher{client: client}
}

// Normalize checks that raw is an absolute http(s) URL and returns it in
// canonical form.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrUnsupportedURL
	}
	u.Fragment = ""
	return u.String(), nil
}

// Fetch downloads rawURL and reads its preview tags.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	target, err := Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// some video hosts serve an empty shell to unknown agents
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; hawkeye/1.0)")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "video/") {
		return &Preview{URL: target, Video: target}, nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return parse(target, doc), nil
}

func parse(target string, doc *goquery.Document) *Preview {
	p := &Preview{URL: target}

	p.Title = meta(doc, `meta[property="og:title"]`, `meta[name="twitter:title"]`)
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	p.Description = meta(doc, `meta[property="og:description"]`, `meta[name="description"]`)
	p.Thumbnail = resolve(target, meta(doc, `meta[property="og:image"]`, `meta[name="twitter:image"]`))
	p.Video = resolve(target, meta(doc, `meta[property="og:video:secure_url"]`, `meta[property="og:video:url"]`, `meta[property="og:video"]`))
	return p
}

// meta returns the first non-empty content attribute among selectors.
func meta(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
