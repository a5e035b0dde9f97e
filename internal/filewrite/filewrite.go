// Copyright 2026 the Coralgate contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package filewrite replaces a file's contents atomically while holding a lock file next to it.
package filewrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// defaultFileLockTimeout is how long we will wait trying to acquire the file lock before timing out.
	defaultFileLockTimeout = 10 * time.Second

	// defaultFileLockRetryInterval is how often we will poll while waiting for the file lock to become available.
	defaultFileLockRetryInterval = 10 * time.Millisecond

	// PrivatePerm is used for any file which holds a private key.
	PrivatePerm os.FileMode = 0600
)

type File struct {
	path        string
	trylockFunc func() error
	unlockFunc  func() error
}

func New(path string) *File {
	lock := flock.New(path + ".lock")
	return &File{
		path: path,
		trylockFunc: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFileLockTimeout)
			defer cancel()
			locked, err := lock.TryLockContext(ctx, defaultFileLockRetryInterval)
			if err == nil && !locked {
				err = errors.New("lock is held by another process")
			}
			return err
		},
		unlockFunc: func() error {
			if err := lock.Unlock(); err != nil {
				return err
			}
			// best effort, another writer may already hold a new lock on the same path
			_ = os.Remove(lock.Path())
			return nil
		},
	}
}

func (f *File) Path() string {
	return f.path
}

// Write replaces the file with data. Readers see either the old or the new contents, never a
// partial write.
func (f *File) Write(data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("could not create directory %q: %w", dir, err)
	}

	if err := f.trylockFunc(); err != nil {
		return fmt.Errorf("could not lock %q: %w", f.path, err)
	}
	defer func() {
		if unlockErr := f.unlockFunc(); unlockErr != nil && err == nil {
			err = fmt.Errorf("could not unlock %q: %w", f.path, unlockErr)
		}
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("could not write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("could not sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("could not set permissions on temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		// Windows refuses to rename over a file that exists.
		_ = os.Remove(f.path)
		if err2 := os.Rename(tmpPath, f.path); err2 != nil {
			return fmt.Errorf("could not replace %q: %w", f.path, errors.Join(err, err2))
		}
	}
	return nil
}
