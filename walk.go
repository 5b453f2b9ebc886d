package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSuffixes is the allow-list used when --match is not given.
var DefaultSuffixes = []string{".jpeg", ".jpg", ".png", ".BMP"}

// FindImages returns every regular file under root whose name ends with one
// of suffixes. Matching is case-sensitive: ".BMP" does not match "x.bmp".
// Symbolic links are followed, both to files and to directories; each resolved
// directory is listed once, so link cycles terminate. Paths are reported as
// seen from root. The whole tree is walked before returning, and the result
// is sorted.
func FindImages(root string, suffixes []string) ([]string, error) {
	w := &treeWalker{
		suffixes: suffixes,
		seen:     make(map[string]bool),
	}

	if err := w.walk(filepath.Clean(root)); err != nil {
		return nil, fmt.Errorf("error while exploring directory: %w", err)
	}

	sort.Strings(w.files)
	return w.files, nil
}

type treeWalker struct {
	suffixes []string
	seen     map[string]bool
	files    []string
}

// walk lists the directory at display, which may itself be a link. Entries
// are walked under their resolved location and reported under display.
func (w *treeWalker) walk(display string) error {
	resolved, err := filepath.EvalSymlinks(display)
	if err != nil {
		return err
	}

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		shown := filepath.Join(display, rel)

		switch {
		case d.IsDir():
			if w.seen[path] {
				return filepath.SkipDir
			}
			w.seen[path] = true

		case d.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				// Dangling link.
				return nil
			}
			if info.IsDir() {
				return w.walk(shown)
			}
			if info.Mode().IsRegular() && hasAnySuffix(d.Name(), w.suffixes) {
				w.files = append(w.files, shown)
			}

		case d.Type().IsRegular():
			if hasAnySuffix(d.Name(), w.suffixes) {
				w.files = append(w.files, shown)
			}
		}

		return nil
	})
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
