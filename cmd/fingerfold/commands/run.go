package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/fingerfold/internal/capture"
	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/display"
	"github.com/ayusman/fingerfold/internal/metrics"
	"github.com/ayusman/fingerfold/internal/overlay"
	"github.com/ayusman/fingerfold/internal/server"
	"github.com/ayusman/fingerfold/internal/session"
	"github.com/ayusman/fingerfold/internal/store"
	"github.com/ayusman/fingerfold/internal/tray"
)

const shutdownTimeout = 5 * time.Second

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Track hands on the camera feed until 'q' is pressed",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&flagCfg.FPS, "fps", flagCfg.FPS, "requested camera frame rate")
	f.StringVar(&flagCfg.Window, "window", flagCfg.Window, "preview window title")
	f.BoolVar(&flagCfg.Headless, "headless", false, "do not open a preview window")
	f.StringVar(&flagCfg.WebAddr, "web", "", "serve the web preview on this address, e.g. :8080")
	f.BoolVar(&trayMode, "tray", false, "show a system tray menu (implies --headless)")
}

func runSession(cmd *cobra.Command, args []string) error {
	if trayMode {
		cfg.Headless = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	met := metrics.New()
	observers := []session.Observer{session.NewLogObserver(log), met}
	var sinks display.Multi

	var st *store.Store
	if cfg.TraceDB != "" {
		var err error
		st, err = store.New(cfg.TraceDB)
		if err != nil {
			return fmt.Errorf("open trace store: %w", err)
		}
		defer st.Close()

		rec := store.NewRecorder(st, log)
		if _, err := rec.Begin(cfg.Camera); err != nil {
			return fmt.Errorf("begin trace: %w", err)
		}
		defer func() {
			if err := rec.End(); err != nil {
				log.Warn("failed to end trace session", slog.Any("error", err))
			}
		}()
		observers = append(observers, rec)
	}

	previewURL := ""
	if cfg.WebAddr != "" {
		frames := server.NewFrameHub()
		readings := server.NewReadingsHub(log)
		srv := server.New(server.Config{
			Frames:   frames,
			Readings: readings,
			Metrics:  met,
			Store:    st,
			Logger:   log,
		})
		addr, err := srv.Start(cfg.WebAddr)
		if err != nil {
			return fmt.Errorf("start web preview: %w", err)
		}
		previewURL = "http://" + addr
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("web preview shutdown error", slog.Any("error", err))
			}
		}()
		sinks = append(sinks, frames)
		observers = append(observers, readings)
	}

	var tr *tray.Tray
	if trayMode {
		tr = tray.New()
		observers = append(observers, tr)
	}

	det, err := detector.NewMediaPipeDetector(detectorConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("landmark provider: %w", err)
	}

	if !cfg.Headless {
		sinks = append(display.Multi{display.NewWindow(cfg.Window)}, sinks...)
	}

	camera := capture.NewCamera(cfg.Camera)
	camera.SetFPS(cfg.FPS)

	s := session.New(session.Config{
		Source:    camera,
		Detector:  det,
		Renderer:  overlay.NewRenderer(overlay.DefaultConfig()),
		Palette:   overlay.DefaultPalette(),
		Display:   sinks,
		Observers: observers,
		Logger:    log,
		CameraID:  cfg.Camera,
	})

	if tr == nil {
		return s.Run(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	tr.OnQuit(cancel)
	tr.OnPreview(func() {
		if previewURL == "" {
			log.Info("web preview is off; start with --web to enable it")
			return
		}
		log.Info("web preview", slog.String("url", previewURL))
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(ctx)
		tr.Quit()
	}()
	tr.Run()
	cancel()
	return <-errCh
}
