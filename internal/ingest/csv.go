// Package ingest converts externally produced repository lists into
// migration files. The CSV shape matches the spreadsheet exports used to
// seed ecosystems: one column holding the repository URL and one holding a
// human project name that becomes the tag.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoRows indicates the CSV produced no usable migration lines.
var ErrNoRows = errors.New("no usable rows in CSV input")

// Options controls CSV conversion.
type Options struct {
	// Ecosystem is the ecosystem every repadd attaches to.
	Ecosystem string
	// URLColumn is the header of the repository URL column.
	URLColumn string
	// NameColumn is the header of the project name column; the cleaned
	// name becomes the repadd tag.
	NameColumn string
	// DeclareEcosystem prepends an ecoadd for Ecosystem, for migrations
	// that introduce a brand-new ecosystem rather than extend one.
	DeclareEcosystem bool
}

// Summary reports what a conversion did.
type Summary struct {
	Rows       int // data rows seen
	Written    int // repadd lines produced
	Duplicates int // rows dropped as (name, url) duplicates
	Skipped    int // rows dropped for missing url or name
}

// FromCSV reads CSV rows and produces ordered migration lines. Rows with a
// missing URL or name are skipped, and duplicate (name, url) pairs collapse
// to their first occurrence, mirroring how spreadsheet exports accumulate
// repeats.
func FromCSV(r io.Reader, opts Options) ([]string, Summary, error) {
	if opts.URLColumn == "" {
		opts.URLColumn = "project_name"
	}
	if opts.NameColumn == "" {
		opts.NameColumn = "Name"
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, Summary{}, fmt.Errorf("ingest: reading CSV header: %w", err)
	}
	// Spreadsheet exports often carry a UTF-8 BOM on the first cell.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	urlIdx, nameIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.URLColumn:
			urlIdx = i
		case opts.NameColumn:
			nameIdx = i
		}
	}
	if urlIdx < 0 {
		return nil, Summary{}, fmt.Errorf("ingest: CSV has no %q column", opts.URLColumn)
	}
	if nameIdx < 0 {
		return nil, Summary{}, fmt.Errorf("ingest: CSV has no %q column", opts.NameColumn)
	}

	var lines []string
	var sum Summary
	seen := make(map[string]bool)
	if opts.DeclareEcosystem {
		lines = append(lines, fmt.Sprintf("ecoadd %q", opts.Ecosystem))
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Summary{}, fmt.Errorf("ingest: reading CSV row: %w", err)
		}
		sum.Rows++

		url := fieldAt(row, urlIdx)
		name := fieldAt(row, nameIdx)
		if url == "" || name == "" {
			sum.Skipped++
			continue
		}
		id := name + "|" + url
		if seen[id] {
			sum.Duplicates++
			continue
		}
		seen[id] = true

		// A name that cleans to nothing (e.g. fully non-ASCII) yields an
		// untagged repadd; a bare '#' would not parse.
		line := fmt.Sprintf("repadd %q %s", opts.Ecosystem, url)
		if tag := CleanTag(name); tag != "" {
			line += " #" + tag
		}
		lines = append(lines, line)
		sum.Written++
	}
	if sum.Written == 0 {
		return nil, sum, ErrNoRows
	}
	return lines, sum, nil
}

// fieldAt returns the trimmed field at idx, or "" for a short row.
func fieldAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// CleanTag turns a free-form project name into a tag token: spaces become
// hyphens, '&' becomes "and", and anything not alphanumeric or '-' is
// dropped.
func CleanTag(name string) string {
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "&", "and")
	var b strings.Builder
	for _, r := range name {
		if r == '-' ||
			(r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WriteMigration writes lines as a timestamped migration file in dir and
// returns the filename. The timestamp prefix uses only filesystem-safe
// characters and sorts lexically in chronological order. The file is
// written to a temp path first and renamed into place.
func WriteMigration(dir, description string, lines []string, now time.Time) (string, error) {
	stamp := now.UTC().Format("2006-01-02T150405Z")
	desc := CleanTag(strings.ToLower(description))
	if desc == "" {
		desc = "migration"
	}
	name := fmt.Sprintf("%s_%s.txt", stamp, desc)

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("ingest: writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("ingest: renaming %s into place: %w", name, err)
	}
	return name, nil
}
