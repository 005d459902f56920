// Package scan lists the image files of a directory. A Loader runs scans in
// the background and keeps at most one of them alive.
package scan

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"imgview/internal/errors"

	"github.com/spf13/afero"
)

// readBatch is the number of entries read per Readdir call; the context is
// still checked for every entry.
const readBatch = 256

// ImageSet is the sorted list of absolute image paths found by one scan
type ImageSet []string

// Len returns the number of images
func (s ImageSet) Len() int {
	return len(s)
}

// At returns the path at index i, or "" when i is out of range
func (s ImageSet) At(i int) string {
	if i < 0 || i >= len(s) {
		return ""
	}
	return s[i]
}

// Scan enumerates the immediate entries of dir and returns the paths whose
// extension passes filter, sorted lexicographically. Subdirectories are not
// descended into. When ctx is cancelled Scan returns an error of kind
// Cancelled and no partial result.
func Scan(ctx context.Context, fs afero.Fs, dir string, filter *Filter) (ImageSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCancelled, dir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewFileError("invalid directory", dir, errors.InvalidPath, err)
	}

	f, err := fs.Open(abs)
	if err != nil {
		return nil, classify(abs, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, classify(abs, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", abs, errors.InvalidPath, nil)
	}

	var images ImageSet
	for {
		entries, err := f.Readdir(readBatch)
		for _, entry := range entries {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.ErrCancelled, abs)
			}
			if entry.IsDir() || !filter.Match(entry.Name()) {
				continue
			}
			images = append(images, filepath.Join(abs, entry.Name()))
		}
		if err == io.EOF || (err == nil && len(entries) == 0) {
			break
		}
		if err != nil {
			return nil, classify(abs, err)
		}
	}

	if ctx.Err() != nil {
		return nil, errors.Wrap(errors.ErrCancelled, abs)
	}

	sort.Strings(images)
	if images == nil {
		images = ImageSet{}
	}
	return images, nil
}

// ResolveDirectory returns the directory to scan for a user supplied path:
// a directory is used as is, a file yields its containing directory.
func ResolveDirectory(fs afero.Fs, path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.NewFileError("invalid path", path, errors.InvalidPath, err)
	}

	info, err := fs.Stat(abs)
	if err != nil {
		return "", classify(abs, err)
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.NewFileError("directory not found", path, errors.FileNotFound, err)
	case os.IsPermission(err):
		return errors.NewFileError("directory not accessible", path, errors.FileAccessDenied, err)
	default:
		return errors.NewFileError("cannot read directory", path, errors.InvalidPath, err)
	}
}
