package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

type localFile struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// localSnapshot stats every entry of dir in filesystem enumeration order.
// Subdirectories are not mirrored and are skipped.
func localSnapshot(dir string) ([]localFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read local folder: %w", err)
	}

	files := make([]localFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed between listing and stat, the next cycle settles it
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}

		files = append(files, localFile{
			Name:     entry.Name(),
			Path:     filepath.Join(dir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	return files, nil
}
