// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package slave

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ffutop/modbus-slave/modbus"
	"github.com/ffutop/modbus-slave/modbus/buffer"
)

func TestSlave_Process(t *testing.T) {
	dev := &fakeDevice{lo: 0, hi: 99, state: func(address uint16) bool { return address < 4 }}
	s := NewSlave(dev, modbus.MaxPDUDataSize)

	tests := []struct {
		name    string
		req     modbus.ProtocolDataUnit
		wantFn  byte
		want    []byte
		wantErr error
	}{
		{"ReadCoils", modbus.ProtocolDataUnit{FunctionCode: 0x01, Data: request(0, 8)}, 0x01, []byte{0x01, 0x0F}, nil},
		{"IllegalAddress", modbus.ProtocolDataUnit{FunctionCode: 0x01, Data: request(95, 10)}, 0x81, []byte{0x02}, nil},
		{"IllegalValue", modbus.ProtocolDataUnit{FunctionCode: 0x01, Data: request(0, 2001)}, 0x81, []byte{0x03}, nil},
		{"IllegalFunction", modbus.ProtocolDataUnit{FunctionCode: 0x03, Data: request(0, 1)}, 0x83, []byte{0x01}, nil},
		{"Truncated", modbus.ProtocolDataUnit{FunctionCode: 0x01, Data: []byte{0x00}}, 0, nil, ErrRequestTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.Process(tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Process failed: %v", err)
			}
			if resp.FunctionCode != tt.wantFn {
				t.Errorf("Expected function code 0x%02X, got 0x%02X", tt.wantFn, resp.FunctionCode)
			}
			if !bytes.Equal(resp.Data, tt.want) {
				t.Errorf("Expected data % X, got % X", tt.want, resp.Data)
			}
		})
	}

	c := s.Counters()
	if got := c.Get(CntRequest); got != 5 {
		t.Errorf("requests = %d, want 5", got)
	}
	if got := c.Get(CntException); got != 3 {
		t.Errorf("exceptions = %d, want 3", got)
	}
	if got := c.Get(CntIllegalFunction); got != 1 {
		t.Errorf("illegal_function = %d, want 1", got)
	}
	if got := c.Get(CntTruncated); got != 1 {
		t.Errorf("truncated = %d, want 1", got)
	}
}

func TestSlave_CallbackFailureCounted(t *testing.T) {
	dev := allValid()
	dev.readErrAt = 1
	s := NewSlave(dev, 16)

	if _, err := s.Process(modbus.ProtocolDataUnit{FunctionCode: 0x01, Data: request(0, 1)}); !errors.Is(err, ErrCallbackFailed) {
		t.Fatalf("Expected ErrCallbackFailed, got %v", err)
	}
	if got := s.Counters().Get(CntCallbackFailed); got != 1 {
		t.Errorf("callback_failed = %d, want 1", got)
	}
}

func TestSlave_SmallResponseBuffer(t *testing.T) {
	s := NewSlave(allValid(), 2)
	if _, err := s.Process(modbus.ProtocolDataUnit{FunctionCode: 0x01, Data: request(0, 16)}); !errors.Is(err, ErrResponseTruncated) {
		t.Fatalf("Expected ErrResponseTruncated, got %v", err)
	}
}

type echoCommand struct{}

func (echoCommand) Execute(fn byte, request []byte, response *buffer.Emitter) (byte, error) {
	for _, b := range request {
		if err := response.WriteUint8(b); err != nil {
			return 0, err
		}
	}
	return fn, nil
}

func TestSlave_Register(t *testing.T) {
	s := NewSlave(allValid(), 8)
	s.Register(0x42, echoCommand{})

	resp, err := s.Process(modbus.ProtocolDataUnit{FunctionCode: 0x42, Data: []byte{0x01, 0x02}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.FunctionCode != 0x42 || !bytes.Equal(resp.Data, []byte{0x01, 0x02}) {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestCounters(t *testing.T) {
	var c Counters
	c.Inc(CntRequest)
	c.Inc(CntRequest)
	c.Inc(Counter(99))

	snap := c.Snapshot()
	if snap["requests"] != 2 {
		t.Errorf("requests = %d, want 2", snap["requests"])
	}
	if len(snap) != cntNum {
		t.Errorf("Expected %d counters, got %d", cntNum, len(snap))
	}
	c.Reset()
	if c.Get(CntRequest) != 0 {
		t.Error("Expected counters to be zero after Reset")
	}
	if Counter(99).String() != "unknown" {
		t.Errorf("Unexpected name %q", Counter(99).String())
	}
}
