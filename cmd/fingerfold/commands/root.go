// Package commands implements the fingerfold command line.
package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ayusman/fingerfold/internal/config"
	"github.com/ayusman/fingerfold/internal/detector"
	"github.com/ayusman/fingerfold/internal/logger"
)

var (
	envFile string
	flagCfg = config.Defaults()

	// cfg is the effective configuration: environment, then changed flags.
	cfg config.Config
	log *slog.Logger

	trayMode bool
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	flagCfg = config.Defaults()
	trayMode = false

	root := &cobra.Command{
		Use:   "fingerfold",
		Short: "Colour fingertips by fold state on a live camera feed",
		Long: "fingerfold tracks hands on a webcam feed and draws a marker on each " +
			"fingertip, coloured by whether the finger is folded or extended.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(envFile); err != nil {
				if cmd.Flags().Changed("env-file") || !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("load env file: %w", err)
				}
			}
			cfg = resolve(cmd)
			log = logger.New(cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(log)
			return nil
		},
		RunE: runSession,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&envFile, "env-file", ".env", "file with environment variables to load")
	pf.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "log level: debug, info, warn, error")
	pf.StringVar(&flagCfg.LogFormat, "log-format", flagCfg.LogFormat, "log format: json, text, auto")
	pf.IntVar(&flagCfg.Camera, "camera", flagCfg.Camera, "camera device index")
	pf.IntVar(&flagCfg.MaxHands, "max-hands", flagCfg.MaxHands, "maximum number of hands to detect")
	pf.Float64Var(&flagCfg.MinDetection, "min-detection-confidence", flagCfg.MinDetection, "minimum hand detection confidence")
	pf.Float64Var(&flagCfg.MinTracking, "min-tracking-confidence", flagCfg.MinTracking, "minimum hand tracking confidence")
	pf.StringVar(&flagCfg.LandmarkService, "landmark-service", "", "hand landmark service script (auto-discovered when empty)")
	pf.StringVar(&flagCfg.Python, "python", "", "python interpreter for the landmark service")
	pf.StringVar(&flagCfg.TraceDB, "trace", "", "SQLite file to record fingertip readings in")

	addRunFlags(root)

	root.AddCommand(runCmd(), snapshotCmd(), sessionsCmd())
	return root
}

// resolve starts from the environment and applies the flags the user set.
func resolve(cmd *cobra.Command) config.Config {
	c := config.FromEnv()
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}

	set("log-level", func() { c.LogLevel = flagCfg.LogLevel })
	set("log-format", func() { c.LogFormat = flagCfg.LogFormat })
	set("camera", func() { c.Camera = flagCfg.Camera })
	set("max-hands", func() { c.MaxHands = flagCfg.MaxHands })
	set("min-detection-confidence", func() { c.MinDetection = flagCfg.MinDetection })
	set("min-tracking-confidence", func() { c.MinTracking = flagCfg.MinTracking })
	set("landmark-service", func() { c.LandmarkService = flagCfg.LandmarkService })
	set("python", func() { c.Python = flagCfg.Python })
	set("trace", func() { c.TraceDB = flagCfg.TraceDB })
	set("fps", func() { c.FPS = flagCfg.FPS })
	set("window", func() { c.Window = flagCfg.Window })
	set("headless", func() { c.Headless = flagCfg.Headless })
	set("web", func() { c.WebAddr = flagCfg.WebAddr })

	return c
}

func detectorConfig(c config.Config) detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinDetection,
		MinTrackingConf: c.MinTracking,
		ScriptPath:      c.LandmarkService,
		Python:          c.Python,
	}
}
