// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"github.com/ffutop/modbus-slave/internal/device/model"
)

// Storage defines the interface for persisting the coil image of a device.
type Storage interface {
	// Load loads the coil image from storage.
	// If no data exists, it returns an image with every coil OFF.
	Load() (*model.CoilModel, error)

	// Save saves the current coil image to storage.
	Save(m *model.CoilModel) error

	// OnWrite is a hook called after coils have been modified.
	// It allows the storage to perform real-time persistence (e.g. sync to disk or DB).
	OnWrite(address uint16, quantity int)

	// Close releases the resources held by the storage.
	Close() error
}
