// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ffutop/modbus-slave/internal/config"
	"github.com/ffutop/modbus-slave/internal/device/model"
	"github.com/ffutop/modbus-slave/internal/device/persistence"
)

// ErrDeviceClosed is returned by every operation on a closed device.
var ErrDeviceClosed = errors.New("device: closed")

// Device is a local coil device: a contiguous window of accessible coils
// over a persisted coil image. It satisfies slave.CoilDevice.
type Device struct {
	mu      sync.RWMutex
	model   *model.CoilModel
	storage persistence.Storage

	start int
	end   int // inclusive
}

// NewStorage creates the storage backend selected by cfg.
func NewStorage(cfg config.PersistenceConfig) persistence.Storage {
	switch cfg.Type {
	case "file":
		slog.Info("Initializing coil device with file persistence", "path", cfg.Path)
		return persistence.NewFileStorage(cfg.Path)
	case "mmap":
		slog.Info("Initializing coil device with MMAP persistence", "path", cfg.Path)
		return persistence.NewMmapStorage(cfg.Path)
	case "sql":
		// The sqlite3 driver is registered by the main package.
		slog.Info("Initializing coil device with SQL persistence", "driver", "sqlite3", "dsn", cfg.Path)
		return persistence.NewSQLStorage("sqlite3", cfg.Path)
	default:
		slog.Info("Initializing coil device with memory storage (non-persistent)")
		return persistence.NewMemoryStorage()
	}
}

// New creates a Device from configuration and loads its coil image.
func New(cfg config.DeviceConfig) (*Device, error) {
	preset, err := ParseAddressList(cfg.Coils.Preset)
	if err != nil {
		return nil, fmt.Errorf("invalid coil preset: %w", err)
	}

	storage := NewStorage(cfg.Persistence)
	d, err := Open(storage, cfg.Coils.Start, cfg.Coils.Count)
	if err != nil {
		return nil, err
	}

	// Presets only seed volatile images; persisted state wins.
	if cfg.Persistence.Type == "memory" || cfg.Persistence.Type == "" {
		for _, addr := range preset {
			d.model.SetCoil(addr, true)
		}
	}
	return d, nil
}

// Open loads the coil image from storage and exposes count coils starting at start.
func Open(storage persistence.Storage, start, count int) (*Device, error) {
	if start < 0 || count < 1 || start+count > model.MaxAddress+1 {
		return nil, fmt.Errorf("invalid coil window: start %d count %d", start, count)
	}
	m, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load coil image: %w", err)
	}
	return &Device{
		model:   m,
		storage: storage,
		start:   start,
		end:     start + count - 1,
	}, nil
}

// ValidateCoil reports whether address lies inside the coil window.
func (d *Device) ValidateCoil(address uint16) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.model == nil {
		return false, ErrDeviceClosed
	}
	return int(address) >= d.start && int(address) <= d.end, nil
}

// ReadCoil returns the state of a coil. It does not check the window.
func (d *Device) ReadCoil(address uint16) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.model == nil {
		return false, ErrDeviceClosed
	}
	return d.model.Coil(address), nil
}

// WriteCoils sets consecutive coils starting at address and persists them.
func (d *Device) WriteCoils(address uint16, values []bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.model == nil {
		return ErrDeviceClosed
	}
	if int(address) < d.start || int(address)+len(values)-1 > d.end {
		return fmt.Errorf("coils %d..%d outside window %d..%d", address, int(address)+len(values)-1, d.start, d.end)
	}
	if err := d.model.SetCoils(address, values); err != nil {
		return err
	}
	d.storage.OnWrite(address, len(values))
	return nil
}

// WriteCoil sets a single coil and persists it.
func (d *Device) WriteCoil(address uint16, on bool) error {
	return d.WriteCoils(address, []bool{on})
}

// PackCoils returns coils from the image packed LSB-first.
func (d *Device) PackCoils(address uint16, quantity int) ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.model == nil {
		return nil, ErrDeviceClosed
	}
	return d.model.PackCoils(address, quantity)
}

// Window returns the first and last accessible coil address.
func (d *Device) Window() (uint16, uint16) {
	return uint16(d.start), uint16(d.end)
}

// Close saves the image and releases the storage. Callbacks on a closed
// device fail with ErrDeviceClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.model == nil {
		return nil
	}
	var errs []error
	if err := d.storage.Save(d.model); err != nil {
		errs = append(errs, fmt.Errorf("failed to save coil image: %w", err))
	}
	if err := d.storage.Close(); err != nil {
		errs = append(errs, err)
	}
	d.model = nil
	return errors.Join(errs...)
}
