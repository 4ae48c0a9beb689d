// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package modbus

import (
	"errors"
	"testing"

	gomodbus "github.com/goburrow/modbus"
)

func TestNewException(t *testing.T) {
	pdu := NewException(FuncCodeReadCoils, ExceptionCodeIllegalDataAddress)
	if pdu.FunctionCode != 0x81 {
		t.Errorf("Expected function code 0x81, got 0x%02X", pdu.FunctionCode)
	}
	if len(pdu.Data) != 1 || pdu.Data[0] != 0x02 {
		t.Errorf("Expected data [02], got % X", pdu.Data)
	}
	if !pdu.IsException() {
		t.Error("Expected IsException to be true")
	}
}

func TestExceptionError(t *testing.T) {
	ok := ProtocolDataUnit{FunctionCode: FuncCodeReadCoils, Data: []byte{0x01, 0x01}}
	if err := ok.ExceptionError(); err != nil {
		t.Fatalf("Expected nil error for normal response, got %v", err)
	}

	err := NewException(FuncCodeReadCoils, ExceptionCodeIllegalDataValue).ExceptionError()
	var mbErr *gomodbus.ModbusError
	if !errors.As(err, &mbErr) {
		t.Fatalf("Expected *ModbusError, got %T", err)
	}
	if mbErr.ExceptionCode != gomodbus.ExceptionCodeIllegalDataValue {
		t.Errorf("Expected exception code 3, got %d", mbErr.ExceptionCode)
	}
	if mbErr.FunctionCode != 0x81 {
		t.Errorf("Expected function code 0x81, got 0x%02X", mbErr.FunctionCode)
	}
}

func TestExceptionCodeString(t *testing.T) {
	tests := []struct {
		code ExceptionCode
		want string
	}{
		{ExceptionCodeIllegalFunction, "illegal function"},
		{ExceptionCodeIllegalDataAddress, "illegal data address"},
		{ExceptionCodeIllegalDataValue, "illegal data value"},
		{ExceptionCode(0x0B), "exception 0x0B"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
