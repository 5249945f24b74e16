// Package export resolves where a finished yearly report is written. The
// destination is granted once per session (configured directory or a
// runtime grant on sandboxed setups) and files land under a deterministic
// per-year name, overwritten on repeated export.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrDestinationUnavailable signals that no write destination is granted
// or the granted one cannot be used. The user must re-grant or re-select.
var ErrDestinationUnavailable = errors.New("export destination unavailable")

// FileName is the per-year report file name.
func FileName(year int) string {
	return fmt.Sprintf("WorkJournal_%d.xlsx", year)
}

// FolderGrant hands out the destination folder for exports. A grant is
// obtained once and reused for every export in the session.
type FolderGrant interface {
	RequestWriteFolder(ctx context.Context) (string, error)
}

// StaticFolder is a FolderGrant backed by a fixed configured directory.
type StaticFolder string

func (s StaticFolder) RequestWriteFolder(context.Context) (string, error) {
	if s == "" {
		return "", ErrDestinationUnavailable
	}
	return string(s), nil
}

// SessionGrant is a FolderGrant set at runtime, modeling platforms where
// the user picks a folder once per session. Until granted, every export
// fails with ErrDestinationUnavailable.
type SessionGrant struct {
	mu  sync.Mutex
	dir string
}

func (g *SessionGrant) Grant(dir string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dir = dir
}

func (g *SessionGrant) Revoke() {
	g.Grant("")
}

func (g *SessionGrant) RequestWriteFolder(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.dir == "" {
		return "", ErrDestinationUnavailable
	}
	return g.dir, nil
}

// FileSink writes yearly reports into the granted folder.
type FileSink struct {
	grant FolderGrant
}

func NewFileSink(grant FolderGrant) *FileSink {
	return &FileSink{grant: grant}
}

// OpenDestination resolves the grant and opens an atomic writer for the
// year's file. Bytes go to a temporary file first; nothing appears under
// the final name until Close commits it.
func (s *FileSink) OpenDestination(ctx context.Context, year int) (*AtomicFile, error) {
	dir, err := s.grant.RequestWriteFolder(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create export directory: %v", ErrDestinationUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, ".workjournal-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: open temp file: %v", ErrDestinationUnavailable, err)
	}

	return &AtomicFile{
		file:  tmp,
		final: filepath.Join(dir, FileName(year)),
	}, nil
}

// AtomicFile is a write target committed by rename. A failed export calls
// Discard instead of Close and leaves no file under the final name.
type AtomicFile struct {
	file  *os.File
	final string
	done  bool
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.file.Write(p)
}

// Close flushes the temp file and moves it over the final name.
func (a *AtomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true

	if err := a.file.Sync(); err != nil {
		a.file.Close()
		os.Remove(a.file.Name())
		return fmt.Errorf("flush export file: %w", err)
	}
	if err := a.file.Close(); err != nil {
		os.Remove(a.file.Name())
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(a.file.Name(), a.final); err != nil {
		os.Remove(a.file.Name())
		return fmt.Errorf("commit export file: %w", err)
	}
	return nil
}

// Discard abandons the write and removes the temp file.
func (a *AtomicFile) Discard() error {
	if a.done {
		return nil
	}
	a.done = true
	a.file.Close()
	if err := os.Remove(a.file.Name()); err != nil {
		return fmt.Errorf("remove temp export file: %w", err)
	}
	return nil
}

// Name is the final path the export will be (or was) committed to.
func (a *AtomicFile) Name() string {
	return a.final
}
