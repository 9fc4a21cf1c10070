package emu

import (
	"fmt"
	"os"
)

// FileDescriptor represents a host file exposed to the guest.
type FileDescriptor struct {
	HostFile *os.File // Host file handle (nil once closed)
	Path     string   // Path the file was opened with
	Flags    int      // Open flags
	IsOpen   bool     // Whether the FD is currently open
}

// FDTable manages the guest file descriptors beyond stdout and stderr.
// Descriptors are allocated from 3 upward in open order.
type FDTable struct {
	fds    map[int]*FileDescriptor
	nextFD int
}

// NewFDTable creates an empty file descriptor table.
func NewFDTable() *FDTable {
	return &FDTable{
		fds:    make(map[int]*FileDescriptor),
		nextFD: 3,
	}
}

// Open opens a host file and returns the guest descriptor bound to it.
func (t *FDTable) Open(path string, flags int, mode os.FileMode) (int, error) {
	hostFile, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}

	fd := t.nextFD
	t.nextFD++

	t.fds[fd] = &FileDescriptor{
		HostFile: hostFile,
		Path:     path,
		Flags:    flags,
		IsOpen:   true,
	}

	return fd, nil
}

// Get returns the descriptor entry if it exists and is open.
func (t *FDTable) Get(fd int) (*FileDescriptor, bool) {
	entry, exists := t.fds[fd]
	if !exists || !entry.IsOpen {
		return nil, false
	}
	return entry, true
}

// Write writes buf to the host file behind fd.
func (t *FDTable) Write(fd int, buf []byte) (int, error) {
	entry, ok := t.Get(fd)
	if !ok || entry.HostFile == nil {
		return 0, os.ErrInvalid
	}
	return entry.HostFile.Write(buf)
}

// Close closes a file descriptor.
func (t *FDTable) Close(fd int) error {
	entry, ok := t.Get(fd)
	if !ok {
		return os.ErrInvalid
	}

	if entry.HostFile != nil {
		if err := entry.HostFile.Close(); err != nil {
			return err
		}
	}

	entry.HostFile = nil
	entry.IsOpen = false

	return nil
}

// CloseAll closes every open descriptor and returns the first error.
func (t *FDTable) CloseAll() error {
	var first error
	for fd := 3; fd < t.nextFD; fd++ {
		if _, ok := t.Get(fd); !ok {
			continue
		}
		if err := t.Close(fd); err != nil && first == nil {
			first = err
		}
	}
	return first
}
