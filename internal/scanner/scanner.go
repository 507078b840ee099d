package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	coreerrors "github.com/codeqa/engine/internal/errors"
)

// Scan enumerates the eligible files under root, returning them sorted
// ascending by relative path for deterministic output. It fails with
// PathMissing or NotADirectory.
func Scan(root string) ([]FileMeta, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerrors.PathMissing(root)
		}
		return nil, coreerrors.ReadError(root, err)
	}
	if !info.IsDir() {
		return nil, coreerrors.NotADirectory(root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, coreerrors.ReadError(root, err)
	}
	absRoot = filepath.Clean(absRoot)

	var out []FileMeta
	err = walk(absRoot, absRoot, &out)
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// walk recursively visits dir, skipping denylisted subdirectories and
// symlinks, and appending eligible files to out.
func walk(root, dir string, out *[]FileMeta) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// A subdirectory becoming unreadable mid-walk is not fatal to the
		// whole scan; skip it.
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		absPath := filepath.Join(dir, name)

		// Symlinks (to files or directories) are always skipped.
		fi, err := os.Lstat(absPath)
		if err != nil {
			continue
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if entry.IsDir() {
			if IsDenylistedDir(name) {
				continue
			}
			if err := walk(root, absPath, out); err != nil {
				return err
			}
			continue
		}

		if !fi.Mode().IsRegular() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !IsAllowlistedExt(ext) {
			continue
		}

		size := fi.Size()
		if size <= 0 || size > MaxFileSize {
			continue
		}

		// Traversal guard: the resolved path must still be under root.
		resolved, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(resolved, root+string(filepath.Separator)) && resolved != root {
			continue
		}

		relPath, err := filepath.Rel(root, absPath)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)

		*out = append(*out, FileMeta{
			AbsPath:   absPath,
			RelPath:   relPath,
			Extension: ext,
			SizeBytes: size,
			ModTime:   float64(fi.ModTime().UnixNano()) / 1e9,
		})
	}

	return nil
}
