package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// RotatingFileWriter appends to a file, rotating it to path.1, path.2 and
// so on once it would exceed the size limit. Writes are never split.
type RotatingFileWriter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	maxFiles int
	size     int64
	file     *os.File
}

// NewRotatingFileWriter opens path for appending. maxSizeMB is at least 1;
// maxFiles 0 keeps no backups.
func NewRotatingFileWriter(path string, maxSizeMB, maxFiles int) (*RotatingFileWriter, error) {
	maxSizeMB = max(maxSizeMB, 1)
	maxFiles = max(maxFiles, 0)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("log file: mkdir %s: %w", dir, err)
		}
	}
	w := &RotatingFileWriter{path: path, maxBytes: int64(maxSizeMB) << 20, maxFiles: maxFiles}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingFileWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("log file: open %s: %w", w.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("log file: stat %s: %w", w.path, err)
	}
	w.file, w.size = f, info.Size()
	return nil
}

func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("log file: rotate: %w", err)
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingFileWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	backups := w.backups()
	slices.Reverse(backups)
	for _, n := range backups {
		if n+1 > w.maxFiles {
			_ = os.Remove(w.backup(n))
		} else {
			_ = os.Rename(w.backup(n), w.backup(n+1))
		}
	}
	if w.maxFiles > 0 {
		_ = os.Rename(w.path, w.backup(1))
	} else {
		_ = os.Remove(w.path)
	}
	return w.open()
}

func (w *RotatingFileWriter) backup(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// backups returns the existing backup numbers in ascending order.
func (w *RotatingFileWriter) backups() []int {
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil
	}
	prefix := filepath.Base(w.path) + "."
	var nums []int
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n >= 1 {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)
	return nums
}

var _ io.WriteCloser = (*RotatingFileWriter)(nil)
