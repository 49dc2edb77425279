package frames

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogfish/it/v2"
)

type fakeExtractor struct {
	fail map[float64]error
}

func (f fakeExtractor) Frame(_ context.Context, _ string, timestamp float64) (image.Image, error) {
	if err := f.fail[timestamp]; err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 1600, 900))
	for x := 0; x < 1600; x++ {
		img.Set(x, 450, color.White)
	}
	return img, nil
}

func TestSanitizeName(t *testing.T) {
	it.Then(t).Should(
		it.Equal(SanitizeName("Brass Lamp (1960s)!"), "BrassLamp1960s"),
		it.Equal(SanitizeName("Mid-Century Modern Teak Sideboard"), "MidCenturyModer"),
		it.Equal(SanitizeName("Crème brûlée"), "Crèmebrûlée"),
		it.Equal(SanitizeName("?!"), ""),
	)
}

func TestFrameName(t *testing.T) {
	it.Then(t).Should(
		it.Equal(FrameName("", "Brass Lamp", 12.9), "BrassLamp_12.jpg"),
		it.Equal(FrameName("", "Kettle", 0), "Kettle_0.jpg"),
		it.Equal(FrameName("3f2a9c1e-0", "Kettle", 0), "3f2a9c1e-0_Kettle_0.jpg"),
		it.Equal(FrameName("../x", "Kettle", 0), "x_Kettle_0.jpg"),
	)
}

func TestFFmpegArgs(t *testing.T) {
	args := FFmpegExtractor{}.Args("in.mp4", 2.5)
	it.Then(t).Should(
		it.Equal(len(args), 14),
		it.Equal(args[4], "2.5"),
		it.Equal(args[6], "in.mp4"),
		it.Equal(args[len(args)-1], "-"),
	)
}

func TestCropWritesScaledJPEG(t *testing.T) {
	dir := t.TempDir()
	cropper := NewCropper(fakeExtractor{}, dir, 0)

	name, err := cropper.Crop(context.Background(), "in.mp4", Shot{Title: "Brass Lamp", Timestamp: 3.2})
	it.Then(t).Should(
		it.Nil(err),
		it.Equal(name, "BrassLamp_3.jpg"),
	)

	f, err := os.Open(filepath.Join(dir, name))
	it.Then(t).Should(it.Nil(err))
	defer f.Close()

	cfg, err := jpeg.DecodeConfig(f)
	it.Then(t).Should(
		it.Nil(err),
		it.Equal(cfg.Width, DefaultWidth),
		it.Equal(cfg.Height, 450),
	)
}

func TestCropAllKeepsGoingOnFailure(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("boom")
	cropper := NewCropper(fakeExtractor{fail: map[float64]error{2: boom}}, dir, 400)

	results := cropper.CropAll(context.Background(), "in.mp4", []Shot{
		{Title: "Lamp", Timestamp: 1},
		{Title: "Kettle", Timestamp: 2},
		{Title: "Vase", Timestamp: 3},
	})

	it.Then(t).Should(
		it.Equal(len(results), 3),
		it.Nil(results[0].Err),
		it.Equal(results[0].Name, "Lamp_1.jpg"),
		it.Equal(results[1].Name, ""),
		it.Nil(results[2].Err),
		it.Equal(results[2].Name, "Vase_3.jpg"),
	)
	it.Then(t).ShouldNot(it.Nil(results[1].Err))
}

func TestScaleKeepsAspect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	it.Then(t).Should(
		it.Equal(Scale(img, 100).Bounds().Dy(), 50),
		it.Equal(Scale(img, 200).Bounds().Dx(), 200),
	)
}

func TestCropAllSeparatesCollidingNames(t *testing.T) {
	dir := t.TempDir()
	cropper := NewCropper(fakeExtractor{}, dir, 100)

	results := cropper.CropAll(context.Background(), "in.mp4", []Shot{
		{Title: "Brass Lamp", Timestamp: 3.1},
		{Title: "Brass Lamp!", Timestamp: 3.8},
		{Prefix: "scan", Title: "Brass Lamp", Timestamp: 3.5},
		{Prefix: "scan", Title: "Brass Lamp", Timestamp: 3.5},
	})

	it.Then(t).Should(
		it.Nil(results[0].Err),
		it.Nil(results[1].Err),
		it.Nil(results[3].Err),
		it.Equal(results[0].Name, "BrassLamp_3.jpg"),
		it.Equal(results[1].Name, "1_BrassLamp_3.jpg"),
		it.Equal(results[2].Name, "scan_BrassLamp_3.jpg"),
		it.Equal(results[3].Name, "scan-3_BrassLamp_3.jpg"),
	)

	entries, err := os.ReadDir(dir)
	it.Then(t).Should(
		it.Nil(err),
		it.Equal(len(entries), 4),
	)
}
