package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/hawkeye/internal/scan/frames"
)

func cropCmd() *cobra.Command {
	var (
		out    string
		width  int
		ffmpeg string
	)

	cmd := &cobra.Command{
		Use:   "crop <video> <seconds> <title>",
		Short: "Cut one product still out of a video",
		Long: `Cut one product still out of a video, the same way a scan does.
Useful for checking that ffmpeg is installed and working.

Example:
  hawkeye crop static/uploads/test.mp4 2 "Test Item"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			timestamp, err := strconv.ParseFloat(args[1], 64)
			if err != nil || timestamp < 0 {
				return fmt.Errorf("invalid timestamp %q", args[1])
			}
			cropper := frames.NewCropper(frames.FFmpegExtractor{Binary: ffmpeg}, out, width)
			name, err := cropper.Crop(cmd.Context(), args[0], frames.Shot{Title: args[2], Timestamp: timestamp})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "static/products", "Directory to write the still to")
	cmd.Flags().IntVarP(&width, "width", "w", frames.DefaultWidth, "Width of the still in pixels")
	cmd.Flags().StringVar(&ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary")

	return cmd
}
