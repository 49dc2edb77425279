package server

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Its-donkey/hawkeye/internal/scan/analyzer"
	"github.com/Its-donkey/hawkeye/internal/scan/frames"
	"github.com/Its-donkey/hawkeye/internal/scan/linkmeta"
	"github.com/Its-donkey/hawkeye/internal/scan/metrics"
	"github.com/Its-donkey/hawkeye/internal/scan/storage"
	"github.com/Its-donkey/hawkeye/logging"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

type basePageData struct {
	PageTitle      string
	StylesheetPath string
}

type scanPageData struct {
	basePageData
	FormAction      string
	SettleMS        int
	Platforms       []string
	DefaultPlatform string
	Confidence      int
	WasmExecPath    string
	WasmPath        string
}

type reportPageData struct {
	basePageData
	Platform string
	Source   *linkmeta.Preview
	Listings []analyzer.Listing
}

// scanRequest is a validated POST /scan form.
type scanRequest struct {
	file       multipart.File
	header     *multipart.FileHeader
	videoURL   string
	platform   string
	confidence int
}

func (s *server) base(title string) basePageData {
	return basePageData{PageTitle: title, StylesheetPath: staticPrefix + "/styles.css"}
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	data := scanPageData{
		basePageData:    s.base("Scan"),
		FormAction:      "/scan",
		SettleMS:        s.settleMS,
		Platforms:       Platforms,
		DefaultPlatform: DefaultPlatform,
		Confidence:      DefaultConfidence,
		WasmExecPath:    staticPrefix + "/wasm_exec.js",
		WasmPath:        staticPrefix + "/main.wasm",
	}
	s.render(w, r, "scan", data)
}

func (s *server) handleScan(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).WithCategory("scan")

	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	req, ferr := parseScanRequest(r)
	if ferr != nil {
		s.metrics.ObserveScan(metrics.OutcomeBadRequest)
		log.WithField("status", ferr.status).Warn(ferr.message)
		http.Error(w, ferr.message, ferr.status)
		return
	}
	if req.file != nil {
		defer req.file.Close()
	}
	log = log.WithField("platform", req.platform).WithField("confidence", req.confidence)

	var obj storage.Object
	if req.file != nil {
		var err error
		obj, err = s.storeUpload(r.Context(), req)
		if err != nil {
			s.metrics.ObserveScan(metrics.OutcomeStoreError)
			if errors.Is(err, storage.ErrTooLarge) {
				http.Error(w, "Upload too large", http.StatusRequestEntityTooLarge)
				return
			}
			log.Error("store upload failed", err)
			http.Error(w, "Could not store upload", http.StatusInternalServerError)
			return
		}
		s.metrics.ObserveUpload(obj.Size)
		log.WithField("key", obj.Key).WithField("size", obj.Size).Info("upload stored")
	}

	var source *linkmeta.Preview
	if req.videoURL != "" && s.previewer != nil {
		source = s.preview(r.Context(), req.videoURL, log)
	}

	listings, err := s.analyze(r.Context(), analyzer.Request{
		VideoPath:  obj.Path,
		VideoURL:   req.videoURL,
		Platform:   req.platform,
		Confidence: req.confidence,
	})
	if err != nil {
		s.metrics.ObserveScan(metrics.OutcomeAIError)
		log.Error("analysis failed", err)
		http.Error(w, "AI Processing Failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.metrics.ObserveListings(len(listings))

	if obj.Key != "" && s.cropper != nil && len(listings) > 0 {
		s.cropListings(r.Context(), obj.Key, listings, log)
	}

	s.metrics.ObserveScan(metrics.OutcomeOK)
	log.WithField("listings", len(listings)).Info("rendering report")
	s.render(w, r, "report", reportPageData{
		basePageData: s.base("Report"),
		Platform:     req.platform,
		Source:       source,
		Listings:     listings,
	})
}

// formError is a rejected scan form. Its message is shown to the user.
type formError struct {
	status  int
	message string
}

func (e *formError) Error() string { return e.message }

var (
	errNoVideo        = &formError{http.StatusBadRequest, "No video uploaded"}
	errBadVideoURL    = &formError{http.StatusBadRequest, "Invalid video URL"}
	errMalformed      = &formError{http.StatusBadRequest, "Malformed upload"}
	errUploadTooLarge = &formError{http.StatusRequestEntityTooLarge, "Upload too large"}
)

// parseScanRequest validates the form fields of POST /scan.
func parseScanRequest(r *http.Request) (scanRequest, *formError) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return scanRequest{}, errUploadTooLarge
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			return scanRequest{}, errMalformed
		}
	}

	req := scanRequest{
		platform: strings.TrimSpace(r.FormValue("platform")),
	}
	if raw := strings.TrimSpace(r.FormValue("video_url")); raw != "" {
		normalized, err := linkmeta.Normalize(raw)
		if err != nil {
			return scanRequest{}, errBadVideoURL
		}
		req.videoURL = normalized
	}
	if req.platform == "" {
		req.platform = DefaultPlatform
	}

	req.confidence = DefaultConfidence
	if raw := strings.TrimSpace(r.FormValue("confidence")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			return scanRequest{}, &formError{http.StatusBadRequest, fmt.Sprintf("Invalid confidence %q", raw)}
		}
		req.confidence = n
	}

	file, header, err := r.FormFile("video")
	switch {
	case err == nil:
		req.file, req.header = file, header
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return scanRequest{}, errMalformed
	}

	if req.file == nil && req.videoURL == "" {
		return scanRequest{}, errNoVideo
	}
	return req, nil
}

func (s *server) storeUpload(ctx context.Context, req scanRequest) (storage.Object, error) {
	ctx, span := tracer().Start(ctx, "scan.store")
	obj, err := s.store.Save(ctx, req.header.Filename, req.header.Header.Get("Content-Type"), req.file)
	endSpan(span, err)
	return obj, err
}

func (s *server) analyze(ctx context.Context, req analyzer.Request) ([]analyzer.Listing, error) {
	if s.analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.analyzeTimeout)
		defer cancel()
	}
	ctx, span := tracer().Start(ctx, "scan.analyze")
	listings, err := s.analyzer.Analyze(ctx, req)
	endSpan(span, err)
	if listings == nil && err == nil {
		listings = []analyzer.Listing{}
	}
	return listings, err
}

// preview is best effort; the report renders without a source card when the
// page cannot be read.
func (s *server) preview(ctx context.Context, videoURL string, log *logging.LogContext) *linkmeta.Preview {
	ctx, span := tracer().Start(ctx, "scan.preview")
	p, err := s.previewer.Fetch(ctx, videoURL)
	endSpan(span, err)
	if err != nil {
		s.logger.Warn("scan", "link preview failed", map[string]any{"url": videoURL, "error": err.Error()})
		return nil
	}
	log.Info("link preview fetched")
	return p
}

// reopenUpload looks the upload up again by key once analysis is done. The
// local copy may have been evicted while the analyzer ran; Open restores it.
func (s *server) reopenUpload(ctx context.Context, key string) (storage.Object, error) {
	ctx, span := tracer().Start(ctx, "scan.reopen")
	obj, err := s.store.Open(ctx, key)
	endSpan(span, err)
	return obj, err
}

// scanPrefix is the short id stills of one scan are named with.
func scanPrefix(key string) string {
	id, _, _ := strings.Cut(key, "_")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

// cropListings fills in product images. A failed crop, or an upload that can
// no longer be opened, leaves the image empty and the report still renders.
func (s *server) cropListings(ctx context.Context, key string, listings []analyzer.Listing, log *logging.LogContext) {
	video, err := s.reopenUpload(ctx, key)
	if err != nil {
		s.logger.Warn("scan", "reopen upload failed", map[string]any{"key": key, "error": err.Error()})
		return
	}

	ctx, span := tracer().Start(ctx, "scan.crop")
	defer span.End()

	prefix := scanPrefix(key)
	shots := make([]frames.Shot, len(listings))
	for i, listing := range listings {
		shots[i] = frames.Shot{Prefix: prefix, Title: listing.Title, Timestamp: listing.Timestamp}
	}

	for i, result := range s.cropper.CropAll(ctx, video.Path, shots) {
		s.metrics.ObserveCrop(result.Elapsed, result.Err)
		if result.Err != nil {
			s.logger.Warn("scan", "crop failed", map[string]any{
				"title":     listings[i].Title,
				"timestamp": listings[i].Timestamp,
				"error":     result.Err.Error(),
			})
			continue
		}
		listings[i].Image = result.Name
	}
	log.Info("crops finished")
}

func (s *server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, "template missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("server", "render "+name, err, map[string]any{"path": r.URL.Path})
	}
}
