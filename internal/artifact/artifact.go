// Package artifact models one fully-rotated hour of logs on disk.
//
// An artifact is identified purely by its filename: the rotator names
// finished hours YYYY-MM-DD-HH.log.gz, and anything else under the log
// root is not an artifact. The agent treats artifact contents as opaque
// gzip byte streams; it never looks inside.
package artifact

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// namePattern matches exactly one rotated hourly file, e.g. 2025-10-28-13.log.gz.
var namePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(\d{2})\.log\.gz$`)

// Artifact is an immutable compressed hourly log file ready for upload.
type Artifact struct {
	// Path is the absolute location of the file on disk.
	Path string

	// Name is the base filename, e.g. "2025-10-28-13.log.gz".
	Name string

	// ModTime is the file's last modification time. Used as the readiness
	// signal by the scanner and as a fallback date source for the key.
	ModTime time.Time

	// Size is the file size in bytes at scan time.
	Size int64
}

// MatchName reports whether name identifies a rotated hourly artifact.
func MatchName(name string) bool {
	return namePattern.MatchString(name)
}

// Key returns the destination object key for the artifact:
// <prefix>/<YYYY>/<MM>/<DD>/<name>, with the prefix stripped of leading
// and trailing slashes. The result is a pure function of (prefix, Name)
// whenever Name matches the artifact pattern.
func (a Artifact) Key(prefix string) string {
	year, month, day := a.Date()
	return path.Join(strings.Trim(prefix, "/"), year, month, day, a.Name)
}

// Date returns the artifact's year, month, and day as zero-padded strings.
// They are taken from the filename when it matches the pattern; otherwise
// from ModTime truncated to its UTC date. Wall-clock "now" is never used,
// so a retried upload after a restart lands under the same date prefix.
func (a Artifact) Date() (year, month, day string) {
	if m := namePattern.FindStringSubmatch(a.Name); m != nil {
		return m[1], m[2], m[3]
	}
	t := a.ModTime.UTC()
	return fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), fmt.Sprintf("%02d", t.Day())
}
