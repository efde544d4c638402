package store

import (
	"context"
	"errors"
	"sync"

	"github.com/lox/blackjack/internal/fileutil"
)

// File stores the snapshot as a single JSON document.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by the JSON file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Load(_ context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var snap Snapshot
	if err := fileutil.ReadJSON(f.path, &snap); err != nil {
		if errors.Is(err, fileutil.ErrNotExist) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	return snap, nil
}

func (f *File) Save(_ context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fileutil.WriteJSON(f.path, snap)
}

func (f *File) Close() error { return nil }
