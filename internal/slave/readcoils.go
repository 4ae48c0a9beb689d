// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package slave

import (
	"github.com/ffutop/modbus-slave/modbus"
	"github.com/ffutop/modbus-slave/modbus/buffer"
)

// MaxReadCoils is the largest quantity a single Read Coils request may ask for.
const MaxReadCoils = 0x07D0

// CoilDevice answers coil queries for a slave.
//
// The accessible coil addresses must form one contiguous range: ReadCoils
// only validates the first and the last address of a request.
type CoilDevice interface {
	ValidateCoil(address uint16) (bool, error)
	ReadCoil(address uint16) (bool, error)
}

// CoilFuncs adapts a pair of functions to the CoilDevice interface.
type CoilFuncs struct {
	Validate func(address uint16) (bool, error)
	Read     func(address uint16) (bool, error)
}

func (f CoilFuncs) ValidateCoil(address uint16) (bool, error) {
	return f.Validate(address)
}

func (f CoilFuncs) ReadCoil(address uint16) (bool, error) {
	return f.Read(address)
}

// Command executes one function code. It decodes request, writes the
// response payload to response and returns the response function code.
type Command interface {
	Execute(fn byte, request []byte, response *buffer.Emitter) (byte, error)
}

// ReadCoils implements "Read Coils" (0x01).
//
// It is not safe for concurrent use against the same device.
type ReadCoils struct {
	Device CoilDevice
}

// NewReadCoils creates a ReadCoils command bound to dev.
func NewReadCoils(dev CoilDevice) *ReadCoils {
	return &ReadCoils{Device: dev}
}

// HandleReadCoils runs Read Coils against dev with response as the response
// buffer. It returns the response function code and the number of bytes
// written to response.
func HandleReadCoils(dev CoilDevice, fn byte, request, response []byte) (byte, int, error) {
	emitter := buffer.NewEmitter(response)
	respFn, err := NewReadCoils(dev).Execute(fn, request, emitter)
	if err != nil {
		return 0, 0, err
	}
	return respFn, emitter.Len(), nil
}

// Execute implements Command.
func (c *ReadCoils) Execute(fn byte, request []byte, response *buffer.Emitter) (byte, error) {
	if c == nil || c.Device == nil || response == nil {
		return 0, ErrNullReference
	}

	fetcher := buffer.NewFetcher(request)
	start, err := fetcher.ReadUint16BE()
	if err != nil {
		return 0, requestError(err)
	}
	quantity, err := fetcher.ReadUint16BE()
	if err != nil {
		return 0, requestError(err)
	}

	ec, err := c.validate(start, quantity)
	if err != nil {
		return 0, err
	}
	if ec != 0 {
		return writeException(fn, ec, response)
	}

	if err := c.pack(start, quantity, response); err != nil {
		return 0, err
	}
	return fn, nil
}

// validate returns a non-zero exception code when the request must be
// answered with an exception.
func (c *ReadCoils) validate(start, quantity uint16) (modbus.ExceptionCode, error) {
	if quantity == 0 || quantity > MaxReadCoils {
		return modbus.ExceptionCodeIllegalDataValue, nil
	}

	valid, err := c.Device.ValidateCoil(start)
	if err != nil {
		return 0, callbackError("validate", start, err)
	}
	if !valid {
		return modbus.ExceptionCodeIllegalDataAddress, nil
	}

	end := start + quantity - 1
	if end < start {
		// wrapped past 0xFFFF
		return modbus.ExceptionCodeIllegalDataAddress, nil
	}
	valid, err = c.Device.ValidateCoil(end)
	if err != nil {
		return 0, callbackError("validate", end, err)
	}
	if !valid {
		return modbus.ExceptionCodeIllegalDataAddress, nil
	}
	return 0, nil
}

// pack writes the byte count followed by the coil states, eight per byte,
// first coil in the least significant bit.
func (c *ReadCoils) pack(start, quantity uint16, response *buffer.Emitter) error {
	byteCount := (int(quantity) + 7) / 8
	if err := response.WriteUint8(byte(byteCount)); err != nil {
		return responseError(err)
	}

	address := start
	remaining := int(quantity)
	for remaining > 0 {
		var b byte
		for bit := 0; bit < 8 && remaining > 0; bit++ {
			on, err := c.Device.ReadCoil(address)
			if err != nil {
				return callbackError("read", address, err)
			}
			if on {
				b |= 1 << bit
			}
			address++
			remaining--
		}
		if err := response.WriteUint8(b); err != nil {
			return responseError(err)
		}
	}
	return nil
}

// writeException discards anything already emitted and writes the
// exception code.
func writeException(fn byte, ec modbus.ExceptionCode, response *buffer.Emitter) (byte, error) {
	response.Reset()
	if err := response.WriteUint8(byte(ec)); err != nil {
		return 0, responseError(err)
	}
	return fn | modbus.ExceptionFlag, nil
}
