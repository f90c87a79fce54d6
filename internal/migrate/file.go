// Package migrate implements the migration file format: versioned file
// naming, section directives, statement splitting, and the tracking-table
// backed section executor.
package migrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// File is one versioned migration file.
type File struct {
	Version     int64
	Description string
	Name        string
}

// fileNameRe matches V<timestamp>__<slug>.sql.
var fileNameRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_\-]+)\.sql$`)

// ParseFilename parses a migration filename of the form
// V<timestamp>__<slug>.sql.
func ParseFilename(name string) (File, error) {
	m := fileNameRe.FindStringSubmatch(name)
	if m == nil {
		return File{}, fmt.Errorf("invalid migration filename %q: want V<timestamp>__<slug>.sql", name)
	}
	version, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return File{}, fmt.Errorf("invalid migration version in %q: %w", name, err)
	}
	return File{
		Version:     version,
		Description: strings.ReplaceAll(m[2], "_", " "),
		Name:        name,
	}, nil
}

// Filename builds the canonical migration filename for a timestamp and slug.
func Filename(at time.Time, slug string) string {
	return fmt.Sprintf("V%s__%s.sql", at.UTC().Format("20060102150405"), Slugify(slug))
}

// BaselineFilename builds the filename for a baseline capture.
func BaselineFilename(at time.Time) string {
	return Filename(at, "baseline")
}

// Slugify reduces free text to a filename-safe slug.
func Slugify(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
