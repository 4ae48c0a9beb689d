// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrEmitterEnd is returned when a write would exceed the region capacity.
var ErrEmitterEnd = errors.New("buffer: emitter reached end of buffer")

// Emitter writes values into a caller-owned byte region of fixed capacity.
type Emitter struct {
	buf []byte
	n   int
}

// NewEmitter creates an Emitter over b. The capacity is len(b).
func NewEmitter(b []byte) *Emitter {
	return &Emitter{buf: b}
}

// WriteUint8 appends one byte.
func (e *Emitter) WriteUint8(v byte) error {
	if e.Cap()-e.n < 1 {
		return ErrEmitterEnd
	}
	e.buf[e.n] = v
	e.n++
	return nil
}

// WriteUint16BE appends a big-endian 16-bit value.
func (e *Emitter) WriteUint16BE(v uint16) error {
	if e.Cap()-e.n < 2 {
		return ErrEmitterEnd
	}
	binary.BigEndian.PutUint16(e.buf[e.n:], v)
	e.n += 2
	return nil
}

// Len returns the number of bytes written since creation or the last Reset.
func (e *Emitter) Len() int {
	return e.n
}

// Cap returns the capacity of the region.
func (e *Emitter) Cap() int {
	return len(e.buf)
}

// Bytes returns the written portion of the region. It aliases the region.
func (e *Emitter) Bytes() []byte {
	return e.buf[:e.n]
}

// Reset discards everything written so far. It is safe on an empty emitter.
func (e *Emitter) Reset() {
	e.n = 0
}
