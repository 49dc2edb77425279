package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	maxFileAge = 24 * time.Hour
	// rotated names sort in rotation order
	rotationStamp = "20060102-150405.000000"
)

// FileWriter is an io.Writer for Logger that appends to dir/filename. The
// file is rotated once it would grow past maxSizeMB or is a day old; rotated
// files are gzipped in the background and only the newest maxFiles stay.
type FileWriter struct {
	mu           sync.Mutex
	dir          string
	filename     string
	maxSize      int64
	maxFiles     int
	currentFile  *os.File
	currentSize  int64
	lastRotation time.Time
	rotations    int

	// archive serialises compression and pruning; pending lets Close wait.
	archive sync.Mutex
	pending sync.WaitGroup
}

// NewFileWriter opens dir/filename for appending, creating dir if needed.
// A maxSizeMB of zero disables size based rotation.
func NewFileWriter(dir, filename string, maxSizeMB, maxFiles int) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	fw := &FileWriter{
		dir:          dir,
		filename:     filename,
		maxSize:      int64(maxSizeMB) << 20,
		maxFiles:     maxFiles,
		lastRotation: time.Now(),
	}
	if err := fw.openFile(); err != nil {
		return nil, err
	}
	return fw, nil
}

// openFile opens the live log file and picks up its current size, so a
// restart keeps appending to the same file.
func (fw *FileWriter) openFile() error {
	f, err := os.OpenFile(fw.livePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	fw.currentFile = f
	fw.currentSize = info.Size()
	return nil
}

func (fw *FileWriter) livePath() string {
	return filepath.Join(fw.dir, fw.filename)
}

// Write appends p as one unit. p never straddles two files: when it does
// not fit, the file is rotated first.
func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.currentFile == nil {
		return 0, os.ErrClosed
	}
	if fw.shouldRotate(int64(len(p))) {
		if err := fw.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := fw.currentFile.Write(p)
	fw.currentSize += int64(n)
	return n, err
}

// shouldRotate reports whether a write of size bytes needs a fresh file.
// An empty file is never rotated for size, so one oversized entry still
// lands somewhere.
func (fw *FileWriter) shouldRotate(size int64) bool {
	if fw.maxSize > 0 && fw.currentSize > 0 && fw.currentSize+size > fw.maxSize {
		return true
	}
	return time.Since(fw.lastRotation) > maxFileAge
}

// rotate renames the live file aside and opens a new one. Called with mu
// held; compression and pruning happen on a background goroutine.
func (fw *FileWriter) rotate() error {
	if err := fw.currentFile.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	fw.currentFile = nil

	fw.rotations++
	rotated := fmt.Sprintf("%s.%s-%04d", fw.livePath(), time.Now().Format(rotationStamp), fw.rotations%10000)
	if err := os.Rename(fw.livePath(), rotated); err != nil && !os.IsNotExist(err) {
		// keep logging to the old file rather than losing entries
		if oerr := fw.openFile(); oerr != nil {
			return oerr
		}
		return fmt.Errorf("rename log file: %w", err)
	}

	fw.pending.Add(1)
	go func() {
		defer fw.pending.Done()
		fw.archive.Lock()
		defer fw.archive.Unlock()
		compressFile(rotated)
		fw.cleanup()
	}()

	if err := fw.openFile(); err != nil {
		return err
	}
	fw.lastRotation = time.Now()
	return nil
}

// compressFile replaces path with path.gz. On any error the plain file is
// left in place and the partial archive removed.
func compressFile(path string) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	gzPath := path + ".gz"
	out, err := os.Create(gzPath)
	if err != nil {
		return
	}
	gz := gzip.NewWriter(out)
	_, err = io.Copy(gz, in)
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(gzPath)
		return
	}
	_ = os.Remove(path)
}

// cleanup deletes rotated files beyond the newest maxFiles. Rotated names
// embed their rotation time, so name order is age order.
func (fw *FileWriter) cleanup() {
	if fw.maxFiles <= 0 {
		return
	}
	matches, err := filepath.Glob(fw.livePath() + ".*")
	if err != nil {
		return
	}
	sort.Slice(matches, func(i, j int) bool {
		return strings.TrimSuffix(matches[i], ".gz") < strings.TrimSuffix(matches[j], ".gz")
	})
	if len(matches) <= fw.maxFiles {
		return
	}
	for _, path := range matches[:len(matches)-fw.maxFiles] {
		_ = os.Remove(path)
	}
}

// Close closes the live file and waits for pending archives to finish.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	var err error
	if fw.currentFile != nil {
		err = fw.currentFile.Close()
		fw.currentFile = nil
	}
	fw.mu.Unlock()

	fw.pending.Wait()
	return err
}
