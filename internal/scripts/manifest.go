// Package scripts loads a maintenance-script manifest and executes its
// entries in order against the configured instance.
package scripts

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	zetuperrors "github.com/sqlsweden/sqlZetup/pkg/errors"
)

// Entry is one manifest line: the database to run in and the script file,
// relative to the manifest's directory.
type Entry struct {
	Database string
	File     string
	Path     string
	Line     int
}

// LoadManifest parses a manifest of "database:filename" lines. Blank lines
// and #-comments are ignored. Entries keep manifest order.
func LoadManifest(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zetuperrors.NewParseError(path, 0, fmt.Errorf("cannot open manifest: %w", err))
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var entries []Entry

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		db, file, ok := strings.Cut(line, ":")
		db = strings.TrimSpace(db)
		file = strings.TrimSpace(file)
		if !ok || db == "" || file == "" {
			return nil, zetuperrors.NewParseError(path, lineNo,
				fmt.Errorf("malformed entry %q, want database:filename", line))
		}

		entries = append(entries, Entry{
			Database: db,
			File:     file,
			Path:     filepath.Join(dir, file),
			Line:     lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, zetuperrors.NewParseError(path, lineNo, fmt.Errorf("reading manifest: %w", err))
	}

	return entries, nil
}

// Preflight verifies every referenced script file exists before anything is
// executed. The first missing file fails the whole batch.
func Preflight(entries []Entry) error {
	for _, e := range entries {
		info, err := os.Stat(e.Path)
		if err != nil {
			return zetuperrors.NewPreconditionError("scripts",
				fmt.Sprintf("script %q (manifest line %d) is missing", e.File, e.Line), err)
		}
		if info.IsDir() {
			return zetuperrors.NewPreconditionError("scripts",
				fmt.Sprintf("script %q (manifest line %d) is a directory", e.File, e.Line), nil)
		}
	}
	return nil
}
