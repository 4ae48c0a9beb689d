// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"fmt"

	gomodbus "github.com/goburrow/modbus"
)

// Function Codes
const (
	FuncCodeReadCoils              = 0x01
	FuncCodeReadDiscreteInputs     = 0x02
	FuncCodeReadHoldingRegisters   = 0x03
	FuncCodeReadInputRegisters     = 0x04
	FuncCodeWriteSingleCoil        = 0x05
	FuncCodeWriteSingleRegister    = 0x06
	FuncCodeWriteMultipleCoils     = 0x0F
	FuncCodeWriteMultipleRegisters = 0x10
	FuncCodeMaskWriteRegister      = 0x16
)

// ExceptionFlag is set in the function code of an exception response.
const ExceptionFlag = 0x80

// MaxPDUDataSize is the largest payload following the function code in a PDU.
const MaxPDUDataSize = 252

// ExceptionCode is the single payload byte of an exception response.
type ExceptionCode byte

const (
	ExceptionCodeIllegalFunction     ExceptionCode = 0x01
	ExceptionCodeIllegalDataAddress  ExceptionCode = 0x02
	ExceptionCodeIllegalDataValue    ExceptionCode = 0x03
	ExceptionCodeServerDeviceFailure ExceptionCode = 0x04
)

func (e ExceptionCode) String() string {
	switch e {
	case ExceptionCodeIllegalFunction:
		return "illegal function"
	case ExceptionCodeIllegalDataAddress:
		return "illegal data address"
	case ExceptionCodeIllegalDataValue:
		return "illegal data value"
	case ExceptionCodeServerDeviceFailure:
		return "server device failure"
	default:
		return fmt.Sprintf("exception 0x%02X", byte(e))
	}
}

// ProtocolDataUnit (PDU) is independent of underlying communication layers.
type ProtocolDataUnit struct {
	FunctionCode byte
	Data         []byte
}

// IsException reports whether the PDU is an exception response.
func (pdu ProtocolDataUnit) IsException() bool {
	return pdu.FunctionCode&ExceptionFlag != 0
}

// ExceptionError returns the exception carried by pdu as an error, or nil
// when pdu is a normal response.
func (pdu ProtocolDataUnit) ExceptionError() error {
	if !pdu.IsException() {
		return nil
	}
	var code byte
	if len(pdu.Data) > 0 {
		code = pdu.Data[0]
	}
	return &gomodbus.ModbusError{
		FunctionCode:  pdu.FunctionCode,
		ExceptionCode: code,
	}
}

// NewException builds the exception response for the request function code fn.
func NewException(fn byte, code ExceptionCode) ProtocolDataUnit {
	return ProtocolDataUnit{
		FunctionCode: fn | ExceptionFlag,
		Data:         []byte{byte(code)},
	}
}
