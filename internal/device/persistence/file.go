// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ffutop/modbus-slave/internal/device/model"
)

// FileStorage implements persistence using file operations.
// The coil image is kept in memory and written back on every change.
//
// Layout:
// - Coils: 65536 bytes (Offset 0)
// Total Size: 65536 bytes
type FileStorage struct {
	path string
	file *os.File
	data []byte
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load loads the coil image by file operations.
func (fs *FileStorage) Load() (*model.CoilModel, error) {
	// Open file, creating if necessary
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	// Ensure file size
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if fi.Size() != int64(totalSize) {
		if err := f.Truncate(int64(totalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) != totalSize {
		f.Close()
		return nil, fmt.Errorf("short read: got %d bytes, want %d", len(data), totalSize)
	}
	fs.file = f
	fs.data = data

	// Construct the CoilModel backed by the file data slice
	return mapBytesToModel(data), nil
}

// Save flushes the whole image to disk.
func (fs *FileStorage) Save(m *model.CoilModel) error {
	return fs.sync(0, totalSize)
}

// OnWrite writes the changed coils back and syncs the file.
func (fs *FileStorage) OnWrite(address uint16, quantity int) {
	off := offsetCoils + int(address)
	end := off + quantity
	if end > totalSize {
		end = totalSize
	}
	if err := fs.sync(off, end); err != nil {
		slog.Error("Failed to sync file", "path", fs.path, "err", err)
	}
}

func (fs *FileStorage) sync(off, end int) error {
	if fs.data == nil || fs.file == nil {
		return nil
	}
	if _, err := fs.file.WriteAt(fs.data[off:end], int64(off)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	fs.data = nil
	return err
}
