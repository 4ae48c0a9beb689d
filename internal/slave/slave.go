// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package slave

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ffutop/modbus-slave/modbus"
	"github.com/ffutop/modbus-slave/modbus/buffer"
)

// Slave dispatches request PDUs to the command registered for their
// function code. Requests are processed one at a time.
type Slave struct {
	mu         sync.Mutex
	commands   map[byte]Command
	bufferSize int
	counters   Counters
}

// NewSlave creates a Slave serving Read Coils from dev. bufferSize is the
// capacity of the response buffer handed to each command.
func NewSlave(dev CoilDevice, bufferSize int) *Slave {
	s := &Slave{
		commands:   make(map[byte]Command),
		bufferSize: bufferSize,
	}
	s.Register(modbus.FuncCodeReadCoils, NewReadCoils(dev))
	return s
}

// Register installs cmd for fn, replacing any previous command.
func (s *Slave) Register(fn byte, cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[fn] = cmd
}

// Counters returns the diagnostic counters of the slave.
func (s *Slave) Counters() *Counters {
	return &s.counters
}

// Process executes the request and returns the response PDU.
// An error means no response should be sent for this request.
func (s *Slave) Process(req modbus.ProtocolDataUnit) (modbus.ProtocolDataUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters.Inc(CntRequest)

	cmd, ok := s.commands[req.FunctionCode]
	if !ok || cmd == nil {
		slog.Debug("Unsupported function code", "fn", req.FunctionCode)
		s.counters.Inc(CntIllegalFunction)
		s.counters.Inc(CntException)
		return modbus.NewException(req.FunctionCode, modbus.ExceptionCodeIllegalFunction), nil
	}

	emitter := buffer.NewEmitter(make([]byte, s.bufferSize))
	respFn, err := cmd.Execute(req.FunctionCode, req.Data, emitter)
	if err != nil {
		switch {
		case errors.Is(err, ErrCallbackFailed):
			s.counters.Inc(CntCallbackFailed)
			slog.Error("Device callback failed", "fn", req.FunctionCode, "err", err)
		case errors.Is(err, ErrRequestTruncated), errors.Is(err, ErrResponseTruncated):
			s.counters.Inc(CntTruncated)
			slog.Warn("Truncated PDU", "fn", req.FunctionCode, "len", len(req.Data), "err", err)
		default:
			slog.Error("Command failed", "fn", req.FunctionCode, "err", err)
		}
		return modbus.ProtocolDataUnit{}, err
	}

	resp := modbus.ProtocolDataUnit{
		FunctionCode: respFn,
		Data:         emitter.Bytes(),
	}
	if resp.IsException() {
		s.counters.Inc(CntException)
		slog.Debug("Exception response", "fn", req.FunctionCode, "err", resp.ExceptionError())
	}
	return resp, nil
}
