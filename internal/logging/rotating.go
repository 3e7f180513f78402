package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mirrorbox/mirrorbox/internal/utils"
)

const (
	// DefaultMaxLogSize is the size at which the active log file is rotated.
	DefaultMaxLogSize = 100 * 1024 * 1024

	// DefaultMaxLogFiles is how many rotated files are kept around.
	DefaultMaxLogFiles = 5

	logFilePermission = 0o644
)

// RotatingWriter is an io.Writer that appends to a log file and rotates it
// once it crosses a size threshold. Rotated files are renamed with a
// timestamp suffix and the oldest ones are pruned.
type RotatingWriter struct {
	mu       sync.Mutex
	dir      string
	name     string
	maxSize  int64
	maxFiles int
	file     *os.File
	size     int64
}

// NewRotatingWriter opens (or creates) dir/name for appending.
func NewRotatingWriter(dir, name string) (*RotatingWriter, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	w := &RotatingWriter{
		dir:      dir,
		name:     name,
		maxSize:  DefaultMaxLogSize,
		maxFiles: DefaultMaxLogFiles,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Path returns the location of the active log file.
func (w *RotatingWriter) Path() string {
	return filepath.Join(w.dir, w.name)
}

func (w *RotatingWriter) open() error {
	file, err := os.OpenFile(w.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermission)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file = file
	w.size = stat.Size()
	return nil
}

func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		w.file.Close()
		w.file = nil
	}

	rotated := fmt.Sprintf("%s.%s", w.name, time.Now().Format("20060102_150405"))
	if err := os.Rename(w.Path(), filepath.Join(w.dir, rotated)); err != nil && !os.IsNotExist(err) {
		return err
	}

	if err := w.prune(); err != nil {
		return err
	}

	return w.open()
}

// prune removes the oldest rotated files beyond the retention count.
func (w *RotatingWriter) prune() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	var rotated []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), w.name+".") {
			rotated = append(rotated, entry.Name())
		}
	}

	if len(rotated) <= w.maxFiles {
		return nil
	}

	// suffixes are timestamps, so lexical order is chronological
	sort.Strings(rotated)
	for _, name := range rotated[:len(rotated)-w.maxFiles] {
		if err := os.Remove(filepath.Join(w.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
