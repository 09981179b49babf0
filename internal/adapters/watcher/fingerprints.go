package watcher

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprints remembers an xxhash digest per file so that events which leave
// a file's content unchanged, such as a touch or a rewrite of the same bytes,
// do not trigger a rebuild.
type Fingerprints struct {
	mu   sync.Mutex
	sums map[string]uint64
}

// NewFingerprints creates an empty fingerprint set.
func NewFingerprints() *Fingerprints {
	return &Fingerprints{sums: make(map[string]uint64)}
}

// Changed re-fingerprints paths, records the results as the new baseline and
// returns the paths whose content differs from the previous baseline.
// A file seen for the first time counts as changed, a removed file counts as
// changed only if it had a fingerprint. Directories are ignored.
func (f *Fingerprints) Changed(paths []string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var changed []string
	for _, path := range paths {
		sum, err := digest(path)
		previous, known := f.sums[path]

		switch {
		case errors.Is(err, fs.ErrNotExist):
			if known {
				delete(f.sums, path)
				changed = append(changed, path)
			}
		case errors.Is(err, errDirectory):
		case err != nil:
			// Unreadable files change whenever they are touched.
			delete(f.sums, path)
			changed = append(changed, path)
		case !known || previous != sum:
			f.sums[path] = sum
			changed = append(changed, path)
		}
	}
	return changed
}

// Len returns the number of fingerprinted files.
func (f *Fingerprints) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sums)
}

var errDirectory = errors.New("is a directory")

func digest(path string) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, errDirectory
	}

	h := xxhash.New()
	if _, err := io.Copy(h, file); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
