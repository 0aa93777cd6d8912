// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files; with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat returns the float value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid number.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool returns the boolean value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid boolean.
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
	}
	return fallback
}

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// Config is the runtime configuration of a capture session.
type Config struct {
	Camera          int
	FPS             int
	MaxHands        int
	MinDetection    float64
	MinTracking     float64
	Window          string
	Headless        bool
	LandmarkService string
	Python          string
	WebAddr         string
	TraceDB         string
	LogLevel        string
	LogFormat       string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Camera:       0,
		FPS:          30,
		MaxHands:     2,
		MinDetection: 0.5,
		MinTracking:  0.5,
		Window:       "Hand Tracking",
		LogLevel:     "info",
		LogFormat:    "auto",
	}
}

// FromEnv returns Defaults overridden by environment variables.
func FromEnv() Config {
	d := Defaults()
	return Config{
		Camera:          GetEnvInt("FINGERFOLD_CAMERA", d.Camera),
		FPS:             GetEnvInt("FINGERFOLD_FPS", d.FPS),
		MaxHands:        GetEnvInt("FINGERFOLD_MAX_HANDS", d.MaxHands),
		MinDetection:    GetEnvFloat("FINGERFOLD_MIN_DETECTION_CONFIDENCE", d.MinDetection),
		MinTracking:     GetEnvFloat("FINGERFOLD_MIN_TRACKING_CONFIDENCE", d.MinTracking),
		Window:          GetEnv("FINGERFOLD_WINDOW", d.Window),
		Headless:        GetEnvBool("FINGERFOLD_HEADLESS", d.Headless),
		LandmarkService: GetEnv("FINGERFOLD_LANDMARK_SERVICE", d.LandmarkService),
		Python:          GetEnv("FINGERFOLD_PYTHON", d.Python),
		WebAddr:         GetEnv("FINGERFOLD_WEB_ADDR", d.WebAddr),
		TraceDB:         GetEnv("FINGERFOLD_TRACE_DB", d.TraceDB),
		LogLevel:        GetEnv("LOG_LEVEL", d.LogLevel),
		LogFormat:       GetEnv("LOG_FORMAT", d.LogFormat),
	}
}

// Validate checks ranges that would otherwise fail deep inside the session.
func (c Config) Validate() error {
	switch {
	case c.Camera < 0:
		return fmt.Errorf("%w: camera index %d is negative", ErrInvalid, c.Camera)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.FPS)
	case c.MaxHands < 1:
		return fmt.Errorf("%w: max hands must be at least 1, got %d", ErrInvalid, c.MaxHands)
	case c.MinDetection < 0 || c.MinDetection > 1:
		return fmt.Errorf("%w: min detection confidence %v outside [0,1]", ErrInvalid, c.MinDetection)
	case c.MinTracking < 0 || c.MinTracking > 1:
		return fmt.Errorf("%w: min tracking confidence %v outside [0,1]", ErrInvalid, c.MinTracking)
	case !c.Headless && c.Window == "":
		return fmt.Errorf("%w: window name is empty", ErrInvalid)
	}
	return nil
}
