// Package reports manages generated import report files on disk.
package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"covtrack/internal/domain"
)

// Store writes and serves timestamped CSV report files under one directory.
type Store struct {
	dir string
}

// ReportFile describes one stored report.
type ReportFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// NewStore creates the report directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("report directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Create opens a new report file named prefix_<timestamp>.csv.
func (s *Store) Create(prefix string) (*os.File, string, error) {
	name := fmt.Sprintf("%s_%s.csv", prefix, time.Now().UTC().Format("20060102T150405"))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, "", fmt.Errorf("create report file: %w", err)
	}
	return f, name, nil
}

// Open returns a reader for a stored report by name. The name is reduced to
// its base so callers cannot escape the report directory.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	base := filepath.Base(name)
	if base != name || strings.HasPrefix(base, ".") {
		return nil, domain.ErrValidation("invalid report name")
	}
	f, err := os.Open(filepath.Join(s.dir, base))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound("report %q not found", name)
		}
		return nil, err
	}
	return f, nil
}

// List returns stored reports, newest first.
func (s *Store) List() ([]ReportFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []ReportFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ReportFile{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

// Purge deletes reports older than maxAge and returns how many were removed.
func (s *Store) Purge(maxAge time.Duration) (int, error) {
	files, err := s.List()
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, f := range files {
		if f.ModTime.Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, f.Name)); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
