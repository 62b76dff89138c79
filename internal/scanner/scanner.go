// Package scanner discovers rotated log artifacts that are ready to upload.
package scanner

import (
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"pocketlog/internal/artifact"
	"pocketlog/internal/config"
	"pocketlog/internal/logging"
)

// Scanner walks the log root and yields artifacts old enough to be safe
// to upload. Each Scan call re-walks the directory fresh; nothing is
// cached across runs.
type Scanner struct {
	root   string
	minAge time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Scanner from the given configuration. The now function is
// used to get the current time; if nil, time.Now is used.
func New(cfg config.Config, now func() time.Time, logger *slog.Logger) *Scanner {
	if now == nil {
		now = time.Now
	}
	return &Scanner{
		root:   cfg.Root,
		minAge: cfg.MinAge,
		now:    now,
		logger: logging.Default(logger).With("component", "scanner"),
	}
}

// Scan returns a lazy, finite sequence of ready artifacts: regular files
// directly under the root whose name matches the rotated hourly pattern
// and whose age is at least the minimum (boundary inclusive).
//
// A missing root directory yields an empty sequence rather than an error;
// on a fresh host the first runs happen before any logs exist.
func (s *Scanner) Scan() iter.Seq[artifact.Artifact] {
	return func(yield func(artifact.Artifact) bool) {
		matches, err := doublestar.FilepathGlob(filepath.Join(s.root, "*.log.gz"))
		if err != nil {
			s.logger.Warn("glob failed", "root", s.root, "error", err)
			return
		}

		now := s.now()
		for _, path := range matches {
			name := filepath.Base(path)
			if !artifact.MatchName(name) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if now.Sub(info.ModTime()) < s.minAge {
				s.logger.Debug("artifact too young, skipping", "path", path, "age", now.Sub(info.ModTime()))
				continue
			}
			a := artifact.Artifact{
				Path:    path,
				Name:    name,
				ModTime: info.ModTime(),
				Size:    info.Size(),
			}
			if !yield(a) {
				return
			}
		}
	}
}
