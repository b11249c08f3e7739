package ingest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jobextract/internal/domain"
	"jobextract/internal/logger"
)

// DirSource discovers input files under local directories. Text roots
// yield every visible file and JSON roots yield *.json files; hidden files
// and directories are skipped.
type DirSource struct {
	roots  map[domain.SourceKind][]string
	logger *slog.Logger
}

// NewDirSource creates a DirSource. Either list may be empty.
func NewDirSource(textDirs, jsonDirs []string, l *slog.Logger) *DirSource {
	return &DirSource{
		roots: map[domain.SourceKind][]string{
			domain.SourceText: cleanAll(textDirs),
			domain.SourceJSON: cleanAll(jsonDirs),
		},
		logger: logger.OrDefault(l).With("component", "dir_source"),
	}
}

// Roots returns every configured directory.
func (s *DirSource) Roots() []string {
	var out []string
	out = append(out, s.roots[domain.SourceText]...)
	return append(out, s.roots[domain.SourceJSON]...)
}

// Discover walks all roots and returns matching files ordered by
// modification time, then path.
func (s *DirSource) Discover(ctx context.Context) ([]domain.InputFile, error) {
	var files []domain.InputFile
	for _, kind := range []domain.SourceKind{domain.SourceText, domain.SourceJSON} {
		for _, root := range s.roots[kind] {
			found, err := s.walk(ctx, root, kind)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		}
	}
	SortFiles(files)
	return files, nil
}

func (s *DirSource) walk(ctx context.Context, root string, kind domain.SourceKind) ([]domain.InputFile, error) {
	var files []domain.InputFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", walkErr)
			return nil
		}
		if path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !domain.Accepts(kind, path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.logger.Warn("skipping file without info", "path", path, "error", err)
			return nil
		}
		files = append(files, domain.InputFile{
			Location: path,
			Kind:     kind,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return files, nil
}

// Open opens a discovered local file.
func (s *DirSource) Open(_ context.Context, f domain.InputFile) (io.ReadCloser, error) {
	file, err := os.Open(f.Location)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Location, err)
	}
	return file, nil
}

// Handles reports whether f is a local path under one of the roots.
func (s *DirSource) Handles(f domain.InputFile) bool {
	for _, root := range s.roots[f.Kind] {
		rel, err := filepath.Rel(root, f.Location)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// SortFiles orders files by modification time, then location.
func SortFiles(files []domain.InputFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return files[i].Location < files[j].Location
	})
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")
}

func cleanAll(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, filepath.Clean(d))
		}
	}
	return out
}
