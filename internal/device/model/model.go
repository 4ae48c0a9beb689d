// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import "fmt"

const (
	MaxAddress = 65535
)

// CoilModel holds the coil image of a device.
// It uses a flat memory model covering the full 16-bit address space,
// one byte per coil, stored as 1 (ON) or 0 (OFF).
//
// CoilModel does no locking; callers serialize access.
type CoilModel struct {
	Coils []byte
}

// NewCoilModel creates a new coil image with every coil OFF.
func NewCoilModel() *CoilModel {
	return &CoilModel{
		Coils: make([]byte, MaxAddress+1),
	}
}

// Coil returns the state of a single coil.
func (m *CoilModel) Coil(address uint16) bool {
	return m.Coils[address] != 0
}

// SetCoil sets the state of a single coil.
func (m *CoilModel) SetCoil(address uint16, on bool) {
	if on {
		m.Coils[address] = 1
	} else {
		m.Coils[address] = 0
	}
}

// SetCoils sets consecutive coils starting at address.
func (m *CoilModel) SetCoils(address uint16, values []bool) error {
	if err := validateRange(address, len(values)); err != nil {
		return err
	}
	for i, on := range values {
		m.SetCoil(address+uint16(i), on)
	}
	return nil
}

// PackCoils returns quantity coils from address packed eight per byte,
// first coil in the least significant bit.
func (m *CoilModel) PackCoils(address uint16, quantity int) ([]byte, error) {
	if err := validateRange(address, quantity); err != nil {
		return nil, err
	}

	result := make([]byte, (quantity+7)/8)
	for i := 0; i < quantity; i++ {
		if m.Coils[int(address)+i] != 0 {
			result[i/8] |= 1 << uint(i%8)
		}
	}
	return result, nil
}

func validateRange(address uint16, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	// address is 0-based.
	if int(address)+quantity > MaxAddress+1 {
		return fmt.Errorf("address range out of bounds")
	}
	return nil
}
