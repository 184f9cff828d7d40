package order

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoOrderFound is returned when no order documents can be found.
//
// This typically occurs when:
//   - The directory holds no .xml files
//   - Every given path is a directory without orders
var ErrNoOrderFound = errors.New("no order found")

// FindOrderFiles returns the .xml files directly inside dir, sorted by name.
// Subdirectories are not searched. An empty result is not an error.
func FindOrderFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read order directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// ExpandInputs resolves command line inputs into order files.
//
// Each path may be an order file or a directory, which is searched with
// FindOrderFiles. Files are kept even without an .xml extension. Duplicates
// are dropped while input order is preserved.
//
// Returns ErrNoOrderFound if nothing is found.
func ExpandInputs(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			add(filepath.Clean(path))
			continue
		}

		found, err := FindOrderFiles(path)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	if len(files) == 0 {
		return nil, ErrNoOrderFound
	}
	return files, nil
}
