// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestStorage_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		open func() Storage
	}{
		{"File", func() Storage { return NewFileStorage(filepath.Join(dir, "coils.bin")) }},
		{"Mmap", func() Storage { return NewMmapStorage(filepath.Join(dir, "coils.mmap")) }},
		{"SQL", func() Storage { return NewSQLStorage("sqlite3", filepath.Join(dir, "coils.db")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.open()
			m, err := s.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if m.Coil(7) {
				t.Fatal("Expected fresh storage to have coil 7 OFF")
			}
			m.SetCoil(7, true)
			m.SetCoil(65535, true)
			s.OnWrite(7, 1)
			s.OnWrite(65535, 1)
			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			s = tt.open()
			m, err = s.Load()
			if err != nil {
				t.Fatalf("Reload failed: %v", err)
			}
			defer s.Close()
			if !m.Coil(7) || !m.Coil(65535) {
				t.Error("Expected coils 7 and 65535 to survive reload")
			}
			if m.Coil(8) {
				t.Error("Expected coil 8 to stay OFF")
			}

			m.SetCoil(7, false)
			if err := s.Save(m); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		})
	}
}

func TestFileStorage_ResizesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	if err := os.WriteFile(path, []byte{1, 0, 1}, 0644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileStorage(path)
	m, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer fs.Close()

	if !m.Coil(0) || m.Coil(1) || !m.Coil(2) {
		t.Error("Expected existing bytes to be kept")
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != totalSize {
		t.Errorf("Expected file size %d, got %d", totalSize, fi.Size())
	}
}

func TestMemoryStorage(t *testing.T) {
	ms := NewMemoryStorage()
	m, err := ms.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Coils) != totalSize {
		t.Errorf("Expected %d coils, got %d", totalSize, len(m.Coils))
	}
	ms.OnWrite(0, 1)
	if err := ms.Save(m); err != nil {
		t.Fatal(err)
	}
	if err := ms.Close(); err != nil {
		t.Fatal(err)
	}
}
