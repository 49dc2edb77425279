package linkmeta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
)

const videoPage = `<!DOCTYPE html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="  Garage sale walkthrough ">
<meta name="description" content="Everything must go">
<meta property="og:image" content="/thumbs/1.jpg">
<meta property="og:video" content="https://cdn.example.com/v/1.mp4">
</head><body></body></html>`

func TestFetchReadsOpenGraphTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(videoPage))
	}))
	defer srv.Close()

	preview, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/watch?v=1#t=3")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if preview.URL != srv.URL+"/watch?v=1" {
		t.Fatalf("expected fragment to be dropped, got %q", preview.URL)
	}
	if preview.Title != "Garage sale walkthrough" || preview.Description != "Everything must go" {
		t.Fatalf("unexpected preview: %+v", preview)
	}
	if preview.Thumbnail != srv.URL+"/thumbs/1.jpg" {
		t.Fatalf("expected resolved thumbnail, got %q", preview.Thumbnail)
	}
	if preview.Video != "https://cdn.example.com/v/1.mp4" {
		t.Fatalf("unexpected video %q", preview.Video)
	}
}

func TestFetchTitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title> Just a title </title></head></html>`))
	}))
	defer srv.Close()

	preview, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if preview.Title != "Just a title" {
		t.Fatalf("unexpected title %q", preview.Title)
	}
}

func TestFetchDirectVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte{0, 0, 0, 0})
	}))
	defer srv.Close()

	preview, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/clip.mp4")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if preview.Video != srv.URL+"/clip.mp4" {
		t.Fatalf("expected direct video link, got %+v", preview)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	if _, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404")
	}
	for _, raw := range []string{"ftp://example.com/v.mp4", "/relative", "javascript:alert(1)"} {
		if _, err := NewFetcher(nil).Fetch(context.Background(), raw); !errors.Is(err, ErrUnsupportedURL) {
			t.Fatalf("Fetch(%q): expected ErrUnsupportedURL, got %v", raw, err)
		}
	}
}

func TestDefaultFetcherRefusesLoopback(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`<html><head><title>internal admin</title></head></html>`))
	}))
	defer srv.Close()

	preview, err := NewFetcher(nil).Fetch(context.Background(), srv.URL+"/admin")
	if !errors.Is(err, ErrBlockedAddress) {
		t.Fatalf("expected ErrBlockedAddress, got preview=%+v err=%v", preview, err)
	}
	if hits != 0 {
		t.Fatalf("expected no request to reach the loopback server, got %d", hits)
	}
}

func TestBlockedAddr(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1":        true,
		"::1":              true,
		"10.1.2.3":         true,
		"172.16.0.9":       true,
		"192.168.1.1":      true,
		"169.254.169.254":  true,
		"fe80::1":          true,
		"fd00::1":          true,
		"0.0.0.0":          true,
		"::":               true,
		"100.64.0.1":       true,
		"224.0.0.1":        true,
		"::ffff:127.0.0.1": true,
		"93.184.216.34":    false,
		"2606:4700::1111":  false,
	}
	for raw, want := range cases {
		if got := blockedAddr(netip.MustParseAddr(raw)); got != want {
			t.Fatalf("blockedAddr(%s) = %v, want %v", raw, got, want)
		}
	}
}

func TestDialControlRejectsPrivateTargets(t *testing.T) {
	if err := dialControl("tcp4", "169.254.169.254:80", nil); !errors.Is(err, ErrBlockedAddress) {
		t.Fatalf("expected metadata address to be blocked, got %v", err)
	}
	if err := dialControl("tcp4", "93.184.216.34:443", nil); err != nil {
		t.Fatalf("expected public address to pass, got %v", err)
	}
}

func TestRedirectMustStayOnHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "ftp://files.example.com/v.mp4", http.StatusFound)
	}))
	defer srv.Close()

	client := srv.Client()
	client.CheckRedirect = checkRedirect
	if _, err := NewFetcher(client).Fetch(context.Background(), srv.URL); !errors.Is(err, ErrUnsupportedURL) {
		t.Fatalf("expected redirect to be refused, got %v", err)
	}
}
