package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the maximum source file size to index (10 MB).
const DefaultMaxFileSize int64 = 10 << 20

// SourceFile is a document discovered under the source directory.
type SourceFile struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the source directory.
	Size        int64
	ContentHash string // SHA-256 hex digest of the file content.
}

// WalkOptions controls Walk.
type WalkOptions struct {
	RootDir     string
	Include     []string // Only matching files are kept; empty keeps everything.
	Exclude     []string // Matching files are skipped.
	MaxFileSize int64    // 0 selects DefaultMaxFileSize.
}

// Walk returns the supported documents under opts.RootDir in path order.
// Binary, oversized and unsupported files are skipped.
func Walk(opts WalkOptions) ([]SourceFile, error) {
	root, err := filepath.Abs(opts.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source dir: %w", err)
	}
	if st, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("source dir: %w", err)
	} else if !st.IsDir() {
		return nil, fmt.Errorf("source dir %s is not a directory", root)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []SourceFile
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !Supported(rel) {
			return nil
		}
		if len(opts.Include) > 0 && !matchesAny(rel, opts.Include) {
			return nil
		}
		if matchesAny(rel, opts.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}
		if isBinary(path) {
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			return nil
		}

		files = append(files, SourceFile{
			Path:        path,
			RelPath:     rel,
			Size:        info.Size(),
			ContentHash: hash,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// matchesAny reports whether rel matches any doublestar pattern, either as
// a full relative path or by base name.
func matchesAny(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// isBinary reports whether the first 512 bytes of a file contain a NUL byte.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
