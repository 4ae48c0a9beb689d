// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package buffer provides bounded sequential readers and writers over
// fixed byte regions, used to decode request payloads and emit responses.
package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrFetcherEnd is returned when a read runs past the end of the region.
var ErrFetcherEnd = errors.New("buffer: fetcher reached end of buffer")

// Fetcher reads fixed-width values from a read-only byte region.
// It never modifies the underlying slice.
type Fetcher struct {
	buf []byte
	pos int
}

// NewFetcher creates a Fetcher over b. The region length is len(b).
func NewFetcher(b []byte) *Fetcher {
	return &Fetcher{buf: b}
}

// ReadUint8 reads one byte.
func (f *Fetcher) ReadUint8() (byte, error) {
	if f.Remaining() < 1 {
		return 0, ErrFetcherEnd
	}
	v := f.buf[f.pos]
	f.pos++
	return v, nil
}

// ReadUint16BE reads a big-endian 16-bit value.
// The cursor is left untouched if fewer than 2 bytes remain.
func (f *Fetcher) ReadUint16BE() (uint16, error) {
	if f.Remaining() < 2 {
		return 0, ErrFetcherEnd
	}
	v := binary.BigEndian.Uint16(f.buf[f.pos:])
	f.pos += 2
	return v, nil
}

// Remaining returns the number of unread bytes.
func (f *Fetcher) Remaining() int {
	return len(f.buf) - f.pos
}
