// Package archive expands an uploaded ZIP of card images into a working
// directory and lists the images in it.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidArchive wraps anything that prevents the upload from being read as a ZIP.
var ErrInvalidArchive = errors.New("invalid archive")

// MaxEntrySize caps the decompressed size of a single archive member.
const MaxEntrySize = 32 << 20

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Entry is one file written out of the archive.
type Entry struct {
	Name string
	Path string
}

// IsImage reports whether name carries a recognised image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Expand writes every regular file in the archive into dir and returns them
// in archive order. Folder structure inside the archive is flattened: Name is
// the base name, and files sharing a base name are written to distinct paths
// ("card.jpg", "card-2.jpg", ...) so none is lost.
func Expand(r io.ReaderAt, size int64, dir string) ([]Entry, error) {
	zr, err := zip.NewReader(r, size)
	// Insecure names are harmless here since only base names are used.
	if errors.Is(err, zip.ErrInsecurePath) && zr != nil {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	var entries []Entry
	used := make(map[string]bool)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
		if name == "." || name == "/" || name == ".." {
			continue
		}
		dst := filepath.Join(dir, diskName(name, used))
		if err := writeFile(f, dst); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Path: dst})
	}
	return entries, nil
}

// diskName returns name, or name with a numeric suffix before the extension
// when it is already taken, and marks the result as used.
func diskName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func writeFile(f *zip.File, dst string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(out, io.LimitReader(rc, MaxEntrySize+1))
	if err != nil {
		out.Close()
		return fmt.Errorf("%w: extract %s: %v", ErrInvalidArchive, f.Name, err)
	}
	if n > MaxEntrySize {
		out.Close()
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidArchive, f.Name, MaxEntrySize)
	}
	return out.Close()
}

// Images yields the image entries in order and skips everything else.
func Images(entries []Entry) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range entries {
			if !IsImage(e.Name) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
