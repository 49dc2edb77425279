package frames

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/sync/errgroup"
)

// Cropper saves resized stills into a products directory.
type Cropper struct {
	extractor Extractor
	dir       string
	width     int
}

// NewCropper creates a cropper writing to dir. A width of zero means
// DefaultWidth.
func NewCropper(extractor Extractor, dir string, width int) *Cropper {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Cropper{extractor: extractor, dir: dir, width: width}
}

// Shot asks for the still of one item.
type Shot struct {
	Prefix    string
	Title     string
	Timestamp float64
}

// Name is the file name the still is written to.
func (s Shot) Name() string {
	return FrameName(s.Prefix, s.Title, s.Timestamp)
}

// Crop cuts the still for title at timestamp and returns its file name.
func (c *Cropper) Crop(ctx context.Context, videoPath string, shot Shot) (string, error) {
	img, err := c.extractor.Frame(ctx, videoPath, shot.Timestamp)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Scale(img, c.width), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", errEncode.New(err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", errWrite.New(err)
	}
	name := shot.Name()
	if err := os.WriteFile(filepath.Join(c.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", errWrite.New(err)
	}
	return name, nil
}

// Result is the outcome of cropping one shot.
type Result struct {
	Name    string
	Err     error
	Elapsed time.Duration
}

// CropAll crops every shot concurrently. A failed shot does not stop the
// others; its error is reported in the matching Result. Shots that would
// share a file name get their index added to the prefix.
func (c *Cropper) CropAll(ctx context.Context, videoPath string, shots []Shot) []Result {
	results := make([]Result, len(shots))
	shots = Distinct(shots)

	var g errgroup.Group
	g.SetLimit(4)
	for i, shot := range shots {
		g.Go(func() error {
			start := time.Now()
			name, err := c.Crop(ctx, videoPath, shot)
			results[i] = Result{Name: name, Err: err, Elapsed: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Distinct returns a copy of shots in which no two shots map to the same
// file name.
func Distinct(shots []Shot) []Shot {
	out := make([]Shot, len(shots))
	seen := make(map[string]bool, len(shots))
	for i, shot := range shots {
		if seen[shot.Name()] {
			if shot.Prefix == "" {
				shot.Prefix = strconv.Itoa(i)
			} else {
				shot.Prefix = shot.Prefix + "-" + strconv.Itoa(i)
			}
		}
		seen[shot.Name()] = true
		out[i] = shot
	}
	return out
}

// Scale resizes img to width, keeping its aspect ratio.
func Scale(img image.Image, width int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dx() == width {
		return img
	}
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	return transform.Resize(img, width, height, transform.Lanczos)
}
