package model

import (
	"path/filepath"
	"strings"
)

// InputMode selects which of the two upload panels is active.
type InputMode int

const (
	// ModeFile shows the file/camera panel and requires a selected file.
	ModeFile InputMode = iota
	// ModeVideo shows the video URL panel and requires a URL.
	ModeVideo
)

func (m InputMode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeVideo:
		return "video"
	default:
		return "unknown"
	}
}

// ParseInputMode maps the tab names used in the markup to an InputMode.
func ParseInputMode(name string) (InputMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "file":
		return ModeFile, true
	case "video":
		return ModeVideo, true
	default:
		return ModeFile, false
	}
}

// MediaKind is the inferred type of a selected file.
type MediaKind int

const (
	KindImage MediaKind = iota
	KindVideo
)

func (k MediaKind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// QuickTimeMIME is reported for .mov containers by some platforms without the usual prefix handling.
const QuickTimeMIME = "video/quicktime"

// videoExtensions backs the filename fallback for browsers that report an
// empty or generic MIME type for video containers.
var videoExtensions = map[string]bool{
	"mp4": true,
	"mov": true,
	"avi": true,
	"mkv": true,
	"wmv": true,
	"qt":  true,
}

// SelectedMedia is the file currently chosen in the file input.
type SelectedMedia struct {
	Name     string
	MIMEType string
}

// Kind classifies the selection as image or video.
func (m SelectedMedia) Kind() MediaKind {
	return InferKind(m.Name, m.MIMEType)
}

// InferKind classifies a file. The MIME type wins when it names a video;
// the extension is only consulted as a fallback.
func InferKind(name, mimeType string) MediaKind {
	mimeType = strings.TrimSpace(mimeType)
	if strings.HasPrefix(strings.ToLower(mimeType), "video/") {
		return KindVideo
	}
	if mimeType == QuickTimeMIME {
		return KindVideo
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(name))), ".")
	if videoExtensions[ext] {
		return KindVideo
	}
	return KindImage
}

// SubmissionState tracks the overlay-then-submit sequence.
type SubmissionState int

const (
	Idle SubmissionState = iota
	Overlaying
	Submitted
)

func (s SubmissionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Overlaying:
		return "overlaying"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Element IDs rendered by scan.tmpl and resolved by the wasm bootstrap.
const (
	IDFilePanel     = "fileInputPanel"
	IDVideoPanel    = "videoInputPanel"
	IDFileTab       = "tab-file"
	IDVideoTab      = "tab-video"
	IDFileInput     = "file-upload"
	IDVideoURL      = "video-url"
	IDStatusIcon    = "scannerIcon"
	IDStatusText    = "scannerText"
	IDStatusHint    = "scannerHint"
	IDStatusCheck   = "scannerCheck"
	IDScannerBorder = "scannerBorder"
	IDOverlay       = "loadingOverlay"
	IDForm          = "scanForm"
	IDSlider        = "confidence"
	IDSliderValue   = "confidenceValue"
)

// RequiredElementIDs lists the IDs the upload page must provide.
// The slider pair is optional and omitted.
var RequiredElementIDs = []string{
	IDFilePanel, IDVideoPanel,
	IDFileTab, IDVideoTab,
	IDFileInput, IDVideoURL,
	IDStatusIcon, IDStatusText, IDStatusHint, IDStatusCheck,
	IDScannerBorder,
	IDOverlay,
	IDForm,
}
