package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error returned by a fault without its own Err.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes how operations on matching paths fail.
type Fault struct {
	// FailAfterBytes fails writes once a file has received this many
	// bytes. Negative disables the limit.
	FailAfterBytes int64
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}

	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects failures for paths that contain a
// registered pattern.
type FaultyFS struct {
	fs FileSystem

	mu     sync.Mutex
	rules  map[string]Fault
	writes int
}

// NewFaultyFS wraps fsys (Default when nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}

	return &FaultyFS{fs: fsys, rules: make(map[string]Fault)}
}

// AddRule installs fault for every path containing pattern. When several
// patterns match, the longest wins.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules[pattern] = fault
}

// Clear removes all rules.
func (f *FaultyFS) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	clear(f.rules)
}

// Writes reports how many files were opened for writing.
func (f *FaultyFS) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.writes
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		best  Fault
		found bool
		n     = -1
	)

	for pattern, rule := range f.rules {
		if len(pattern) > n && strings.Contains(name, pattern) {
			best, found, n = rule, true, len(pattern)
		}
	}

	return best, found
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	if flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		f.mu.Lock()
		f.writes++
		f.mu.Unlock()
	}

	fault, ok := f.match(name)
	if !ok {
		return file, nil
	}

	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(newpath); ok && fault.FailOnRename {
		return fault.err()
	}

	return f.fs.Rename(oldpath, newpath)
}

func (f *FaultyFS) Remove(name string) error                     { return f.fs.Remove(name) }
func (f *FaultyFS) Stat(name string) (os.FileInfo, error)        { return f.fs.Stat(name) }
func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.fs.MkdirAll(path, perm) }
func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error)   { return f.fs.ReadDir(name) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if limit := ff.fault.FailAfterBytes; limit >= 0 && ff.written+int64(len(p)) > limit {
		// Write the part that fits so a torn file is left behind.
		keep := max(limit-ff.written, 0)

		n, _ := ff.File.Write(p[:keep])
		ff.written += int64(n)

		return n, ff.fault.err()
	}

	n, err := ff.File.Write(p)
	ff.written += int64(n)

	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}

	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.err()
	}

	return ff.File.Close()
}
