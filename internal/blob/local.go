package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
)

// DirStore serves assets from a local directory.
//
// An asset is the file whose stem equals the id ("abc.png"), or failing
// that, the first file in name order whose stem ends with the id
// ("Island1a2b3c4d.png"). The second form is how fetched images are named,
// so the image cache of an earlier run can be used as a DirStore. It only
// applies to ids of at least minSuffixID characters, as a short id would
// match the tail of unrelated names.
type DirStore struct {
	dir string
}

const minSuffixID = 8

// NewDirStore creates a DirStore over dir, which must exist.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		return nil, errors.New("local blob directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("local blob directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local blob directory: %s is not a directory", dir)
	}
	return &DirStore{dir: dir}, nil
}

// find returns the file name serving id.
func (s *DirStore) find(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", err
	}

	var suffixMatches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if stem == id {
			return name, nil
		}
		if len(id) >= minSuffixID && strings.HasSuffix(stem, id) {
			suffixMatches = append(suffixMatches, name)
		}
	}

	if len(suffixMatches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sort.Strings(suffixMatches)
	return suffixMatches[0], nil
}

// ResolveName implements Store. The id is removed from the file stem, so
// "Island1a2b3c4d.png" resolves to "Island.png" and "abc.png" to ".png".
func (s *DirStore) ResolveName(ctx context.Context, id string) (string, error) {
	name, err := s.find(id)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(strings.TrimSuffix(name, ext), id)
	return stem + ext, nil
}

// Fetch implements Store.
func (s *DirStore) Fetch(ctx context.Context, id, destPath string) error {
	name, err := s.find(id)
	if err != nil {
		return err
	}
	return ioutils.CopyFile(ctx, filepath.Join(s.dir, name), destPath)
}
