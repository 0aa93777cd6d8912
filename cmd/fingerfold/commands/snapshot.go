package commands

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"

	"github.com/ayusman/fingerfold/internal/capture"
	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/display"
	"github.com/ayusman/fingerfold/internal/overlay"
	"github.com/ayusman/fingerfold/internal/session"
)

var (
	errNoFrame           = errors.New("camera delivered no frame")
	errUnsupportedFormat = errors.New("unsupported image format")
)

func snapshotCmd() *cobra.Command {
	var (
		out   string
		width int
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write one annotated camera frame to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := formatFor(out); err != nil {
				return err
			}
			if width < 0 {
				return fmt.Errorf("width must not be negative, got %d", width)
			}
			cfg.Headless = true
			if err := cfg.Validate(); err != nil {
				return err
			}

			det, err := detector.NewMediaPipeDetector(detectorConfig(cfg), log)
			if err != nil {
				return fmt.Errorf("landmark provider: %w", err)
			}

			sink := display.NewCapture()
			defer sink.Release()

			s := session.New(session.Config{
				Source:    capture.NewCamera(cfg.Camera),
				Detector:  det,
				Renderer:  overlay.NewRenderer(overlay.DefaultConfig()),
				Palette:   overlay.DefaultPalette(),
				Display:   sink,
				Observers: []session.Observer{session.NewLogObserver(log)},
				Logger:    log,
				MaxFrames: 1,
				CameraID:  cfg.Camera,
			})
			if err := s.Run(cmd.Context()); err != nil {
				return err
			}

			frame, ok := sink.Last()
			defer frame.Close()
			if !ok {
				return errNoFrame
			}

			img, err := frame.ToImage()
			if err != nil {
				return fmt.Errorf("convert frame: %w", err)
			}
			if err := writeImage(out, img, width); err != nil {
				return err
			}

			log.Info("snapshot written", "path", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "snapshot.png", "output file (.png, .jpg, .jpeg or .bmp)")
	cmd.Flags().IntVar(&width, "width", 0, "resize to this width keeping the aspect ratio (0 keeps the camera size)")
	return cmd
}

type imageFormat int

const (
	formatPNG imageFormat = iota
	formatJPEG
	formatBMP
)

func formatFor(path string) (imageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return formatPNG, nil
	case ".jpg", ".jpeg":
		return formatJPEG, nil
	case ".bmp":
		return formatBMP, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
}

func writeImage(path string, img image.Image, width int) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeImage(f, resize(img, width), format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func resize(img image.Image, width int) image.Image {
	if width <= 0 || width == img.Bounds().Dx() {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

func encodeImage(w io.Writer, img image.Image, format imageFormat) error {
	switch format {
	case formatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
	case formatBMP:
		return bmp.Encode(w, img)
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}
