package analyzer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogfish/faults"
	"google.golang.org/genai"
)

const (
	errUpload   = faults.Type("analyzer: upload video")
	errPoll     = faults.Type("analyzer: poll video")
	errGenerate = faults.Type("analyzer: generate listings")
)

// ErrProcessingFailed is returned when the model service rejects the video.
var ErrProcessingFailed = errors.New("analyzer: video processing failed")

const (
	DefaultModel        = "gemini-2.5-flash-lite"
	DefaultPollInterval = 2 * time.Second
	defaultVideoMIME    = "video/mp4"
)

// APIKeyFromEnv returns the first key set among GEMINI_API_KEY and
// GOOGLE_API_KEY.
func APIKeyFromEnv(getenv func(string) string) string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := strings.TrimSpace(getenv(name)); key != "" {
			return key
		}
	}
	return ""
}

// GeminiClient is the part of the Gemini API the analyzer talks to.
type GeminiClient interface {
	UploadFile(ctx context.Context, path, mimeType string) (*genai.File, error)
	GetFile(ctx context.Context, name string) (*genai.File, error)
	DeleteFile(ctx context.Context, name string) error
	GenerateText(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)
}

// GeminiAnalyzer uploads the scan video to Gemini, waits for it to be
// processed and asks the model for listings.
type GeminiAnalyzer struct {
	Client       GeminiClient
	Model        string
	PollInterval time.Duration
	// Search lets the model look up current prices.
	Search bool
}

// NewGeminiAnalyzer connects to the Gemini API with apiKey.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("analyzer: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("analyzer: create gemini client: %w", err)
	}
	return &GeminiAnalyzer{
		Client:       sdkClient{client: client},
		Model:        model,
		PollInterval: DefaultPollInterval,
		Search:       true,
	}, nil
}

// Analyze sends the video with the listing prompt. A reply the model did not
// format as a JSON list yields no listings.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, req Request) ([]Listing, error) {
	var video *genai.Part
	switch {
	case req.VideoPath != "":
		file, err := a.upload(ctx, req.VideoPath)
		if err != nil {
			return nil, err
		}
		defer func() { _ = a.Client.DeleteFile(context.WithoutCancel(ctx), file.Name) }()
		video = genai.NewPartFromURI(file.URI, file.MIMEType)
	case req.VideoURL != "":
		video = genai.NewPartFromURI(req.VideoURL, defaultVideoMIME)
	default:
		return nil, errors.New("analyzer: request has no video")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{video, genai.NewPartFromText(Prompt(req))}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.3)}
	if a.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	text, err := a.Client.GenerateText(ctx, a.model(), contents, cfg)
	if err != nil {
		return nil, errGenerate.New(err)
	}
	return ParseListings(text), nil
}

// upload sends the video and blocks until the service has processed it.
func (a *GeminiAnalyzer) upload(ctx context.Context, path string) (*genai.File, error) {
	file, err := a.Client.UploadFile(ctx, path, videoMIME(path))
	if err != nil {
		return nil, errUpload.New(err)
	}

	interval := a.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		switch file.State {
		case genai.FileStateActive:
			return file, nil
		case genai.FileStateFailed:
			return nil, fmt.Errorf("%w: %s", ErrProcessingFailed, file.Name)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		if file, err = a.Client.GetFile(ctx, file.Name); err != nil {
			return nil, errPoll.New(err)
		}
	}
}

func (a *GeminiAnalyzer) model() string {
	if a.Model == "" {
		return DefaultModel
	}
	return a.Model
}

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".qt":   "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".wmv":  "video/x-ms-wmv",
	".webm": "video/webm",
}

func videoMIME(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "video/") {
		return t
	}
	return defaultVideoMIME
}

// Prompt builds the instructions sent alongside the video.
func Prompt(req Request) string {
	platform := req.Platform
	if platform == "" {
		platform = "eBay"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are HawkEye, an expert reseller.\nStrategy: %s.\n\n", platform)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Watch the video and identify EVERY distinct item you see.\n")
	b.WriteString("2. Return one object per item: two items, two objects.\n")
	b.WriteString("3. Listen to the audio for damage or brand names and put them in voice_note.\n")
	if req.Confidence > 0 {
		fmt.Fprintf(&b, "4. Only list items you identify with at least %d%% confidence.\n", req.Confidence)
	}
	b.WriteString("Return pure JSON without markdown formatting.\n\n")
	b.WriteString("OUTPUT SCHEMA (list of objects):\n")
	fmt.Fprintf(&b, `[{"title": "Item Name", "timestamp": 2.5, "voice_note": "User said...", "description": "Sales copy for %s", "prices": {"quick": 10, "market": 15, "reach": 20}}]`, platform)
	b.WriteString("\n")
	return b.String()
}

// sdkClient adapts *genai.Client to GeminiClient.
type sdkClient struct {
	client *genai.Client
}

func (c sdkClient) UploadFile(ctx context.Context, path, mimeType string) (*genai.File, error) {
	return c.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
	})
}

func (c sdkClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return c.client.Files.Get(ctx, name, nil)
}

func (c sdkClient) DeleteFile(ctx context.Context, name string) error {
	_, err := c.client.Files.Delete(ctx, name, nil)
	return err
}

func (c sdkClient) GenerateText(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
