package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// File is a KeyValueStore persisted as one JSON object in a file. Every
// operation re-reads the file, so edits made by other processes are seen.
// Writes hold an exclusive flock on "<path>.lock" and replace the file
// atomically via rename.
type File struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// OpenFile prepares a file store at path, creating parent directories.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file store: create directory: %w", err)
	}
	return &File{path: path, lock: flock.New(path + ".lock")}, nil
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(ctx, false); err != nil {
		return "", false, err
	}
	defer f.lock.Unlock() //nolint:errcheck

	data, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	return f.mutate(ctx, func(data map[string]string) {
		data[key] = value
	})
}

func (f *File) Delete(ctx context.Context, key string) error {
	return f.mutate(ctx, func(data map[string]string) {
		delete(data, key)
	})
}

// Ping checks that the directory is writable by taking the lock.
func (f *File) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.acquire(ctx, true); err != nil {
		return err
	}
	return f.lock.Unlock()
}

func (f *File) Close() error {
	return f.lock.Close()
}

func (f *File) mutate(ctx context.Context, fn func(map[string]string)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.acquire(ctx, true); err != nil {
		return err
	}
	defer f.lock.Unlock() //nolint:errcheck

	data, err := f.read()
	if err != nil {
		return err
	}
	fn(data)
	return f.write(data)
}

func (f *File) acquire(ctx context.Context, exclusive bool) error {
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = f.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = f.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return fmt.Errorf("file store: lock: %w", err)
	}
	if !ok {
		return errors.New("file store: lock not acquired")
	}
	return nil
}

// read returns the stored map. A missing file is an empty store; a corrupt
// file is an error so it is never silently overwritten.
func (f *File) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("file store: read: %w", err)
	}
	data := map[string]string{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("file store: parse %s: %w", f.path, err)
	}
	return data, nil
}

func (f *File) write(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("file store: write: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("file store: replace: %w", err)
	}
	return nil
}
