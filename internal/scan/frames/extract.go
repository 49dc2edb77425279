package frames

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os/exec"
	"strconv"
	"strings"
)

// Extractor grabs a single frame from a video.
type Extractor interface {
	Frame(ctx context.Context, videoPath string, timestamp float64) (image.Image, error)
}

// FFmpegExtractor shells out to ffmpeg and reads one PNG frame from stdout.
type FFmpegExtractor struct {
	Binary string
}

func (f FFmpegExtractor) binary() string {
	if f.Binary == "" {
		return "ffmpeg"
	}
	return f.Binary
}

// Args returns the ffmpeg arguments used to grab the frame at timestamp.
func (f FFmpegExtractor) Args(videoPath string, timestamp float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(timestamp, 'f', -1, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

// Frame runs ffmpeg and decodes the frame it writes.
func (f FFmpegExtractor) Frame(ctx context.Context, videoPath string, timestamp float64) (image.Image, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary(), f.Args(videoPath, timestamp)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, errExtract.New(err)
	}
	if stdout.Len() == 0 {
		return nil, errExtract.New(fmt.Errorf("no frame at %gs", timestamp))
	}
	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, errDecode.New(err)
	}
	return img, nil
}
