// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"github.com/ffutop/modbus-slave/internal/device/model"
)

// On-disk layout of the coil image: one byte per coil, starting at offset 0.
const (
	sizeCoils = model.MaxAddress + 1
	totalSize = sizeCoils

	offsetCoils = 0
)

// mapBytesToModel constructs a CoilModel backed by the provided data slice.
// Writes to the model go straight to data.
func mapBytesToModel(data []byte) *model.CoilModel {
	return &model.CoilModel{
		Coils: data[offsetCoils : offsetCoils+sizeCoils],
	}
}
