// Package config loads the agent's settings from a flat KEY=value file.
//
// The file is written once by the installer and read fresh on every run;
// the agent keeps no mutable state across invocations. The parsed Config
// is an immutable value passed into the scanner and uploader at
// construction time.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pocketlog/internal/logging"
)

// DefaultPath is where the installer writes the agent configuration.
const DefaultPath = "/etc/pocketlog/pocketlog.conf"

// Config holds the settings for one uploader run.
type Config struct {
	// Bucket is the destination S3 bucket. Required; an empty value is a
	// fatal precondition for the uploader.
	Bucket string

	// Prefix is the key prefix objects are stored under, before the
	// year/month/day components.
	Prefix string

	// Root is the local directory the scanner walks for rotated artifacts.
	Root string

	// DeleteAfterUpload removes the local file after a confirmed upload.
	DeleteAfterUpload bool

	// MinAge is how old an artifact must be before it is considered safe
	// to upload. Protects against racing the rotator, which may still be
	// writing the compressed file when the scanner runs.
	MinAge time.Duration
}

// Defaults returns a fully-populated Config. Every recognized key has a
// value except Bucket, which has no sensible default.
func Defaults() Config {
	return Config{
		Prefix:            "pocketlog",
		Root:              "/var/log/pocketlog",
		DeleteAfterUpload: true,
		MinAge:            120 * time.Second,
	}
}

// Load reads the settings file at path and returns a Config with every
// recognized key set, from the file or from defaults.
//
// The format is line-oriented KEY=value or KEY="value". Blank lines and
// #-comments are skipped, as are lines without an '='. Unknown keys are
// accepted and ignored. A missing or unreadable file is not an error:
// the defaults are returned and a warning is logged.
func Load(path string, logger *slog.Logger) Config {
	logger = logging.Default(logger).With("component", "config")

	cfg := Defaults()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		logger.Warn("settings file not readable, using defaults", "path", path, "error", err)
		return cfg
	}

	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)

		switch key {
		case "S3_BUCKET":
			cfg.Bucket = val
		case "S3_PREFIX":
			cfg.Prefix = val
		case "LOG_ROOT":
			cfg.Root = val
		case "DELETE_AFTER_UPLOAD":
			b, ok := parseBool(val)
			if !ok {
				logger.Warn("unparseable boolean, keeping default", "key", key, "value", val)
				continue
			}
			cfg.DeleteAfterUpload = b
		case "MIN_AGE_SEC":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				logger.Warn("unparseable age, keeping default", "key", key, "value", val)
				continue
			}
			cfg.MinAge = time.Duration(n) * time.Second
		}
	}

	return cfg
}

// parseBool interprets the boolean spellings the installer and operators
// actually use. The second return value reports whether val was recognized.
func parseBool(val string) (value, ok bool) {
	switch strings.ToLower(val) {
	case "true", "yes", "1", "on":
		return true, true
	case "false", "no", "0", "off":
		return false, true
	}
	return false, false
}
