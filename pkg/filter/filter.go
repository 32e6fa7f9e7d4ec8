package filter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cr-transcripts/pkg/domain"
	"cr-transcripts/pkg/index"
)

// Filter defines the interface for transcript filename filtering
type Filter interface {
	ShouldKeep(ctx context.Context, name string) (bool, error)
}

// FilterNames applies all filters to a list of filenames
func FilterNames(ctx context.Context, names []string, filters ...Filter) ([]string, error) {
	filtered := make([]string, 0, len(names))

	for _, name := range names {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("filter error for %s: %w", name, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, name)
		}
	}

	return filtered, nil
}

// PatternFilter keeps filenames that match a transcript pattern
type PatternFilter struct {
	pattern index.Pattern
}

// NewPatternFilter creates a new pattern filter
func NewPatternFilter(p index.Pattern) *PatternFilter {
	return &PatternFilter{pattern: p}
}

// ShouldKeep returns true if name is a transcript filename
func (f *PatternFilter) ShouldKeep(ctx context.Context, name string) (bool, error) {
	return f.pattern.Match(name), nil
}

// AlreadyPresentFilter filters out filenames that already exist in the provided set
type AlreadyPresentFilter struct {
	present domain.FileSet
}

// NewAlreadyPresentFilter creates a new already-present filter
func NewAlreadyPresentFilter(present domain.FileSet) *AlreadyPresentFilter {
	if present == nil {
		present = domain.FileSet{}
	}
	return &AlreadyPresentFilter{
		present: present,
	}
}

// ShouldKeep returns false if name is already in the present set
func (f *AlreadyPresentFilter) ShouldKeep(ctx context.Context, name string) (bool, error) {
	return !f.present.Has(name), nil
}

// LocalFiles returns the names of transcript files in dir. A missing directory
// yields an empty set. Only names are matched, so dir may contain glob
// metacharacters.
func LocalFiles(dir string, p index.Pattern) (domain.FileSet, error) {
	files := make(domain.FileSet)

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	glob := p.Glob()
	for _, e := range entries {
		ok, err := filepath.Match(glob, e.Name())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", glob, err)
		}
		if !ok || !isFile(filepath.Join(dir, e.Name()), e) {
			continue
		}
		files.Add(e.Name())
	}
	return files, nil
}

// isFile reports whether e is a regular file, following symlinks.
func isFile(path string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Missing returns the remote names that match p and are absent from local, sorted.
func Missing(ctx context.Context, remote, local domain.FileSet, p index.Pattern) ([]string, error) {
	return FilterNames(ctx, remote.Sorted(), NewPatternFilter(p), NewAlreadyPresentFilter(local))
}
