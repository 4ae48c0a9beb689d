// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ffutop/modbus-slave/internal/slave"
	"github.com/ffutop/modbus-slave/modbus"
	"github.com/spf13/cobra"
)

func newRequestCmd(a *app) *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "request <pdu-hex>",
		Short: "Execute a request PDU and print the response PDU",
		Long: `Execute a request PDU given as hex (function code followed by data,
e.g. "01 0000 000A") against the coil device and print the response PDU.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parsePDU(strings.Join(args, ""))
			if err != nil {
				return err
			}

			dev, err := a.openDevice()
			if err != nil {
				return err
			}
			defer closeDevice(dev)

			s := slave.NewSlave(dev, a.cfg.Slave.ResponseBufferSize)
			resp, err := s.Process(req)
			if err != nil {
				return fmt.Errorf("no response: %w", err)
			}
			writePDU(cmd.OutOrStdout(), resp)
			if stats {
				writeCounters(cmd.OutOrStdout(), s.Counters())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "Print diagnostic counters after the response")
	cmd.Flags().Int("buffer-size", modbus.MaxPDUDataSize, "Response buffer capacity in bytes")
	return cmd
}

// parsePDU decodes a hex string into a request PDU. Spaces are ignored.
func parsePDU(s string) (modbus.ProtocolDataUnit, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(s, " ", ""), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return modbus.ProtocolDataUnit{}, fmt.Errorf("invalid PDU hex: %w", err)
	}
	if len(raw) == 0 {
		return modbus.ProtocolDataUnit{}, fmt.Errorf("empty PDU")
	}
	if len(raw)-1 > modbus.MaxPDUDataSize {
		return modbus.ProtocolDataUnit{}, fmt.Errorf("PDU data of %d bytes exceeds %d", len(raw)-1, modbus.MaxPDUDataSize)
	}
	return modbus.ProtocolDataUnit{FunctionCode: raw[0], Data: raw[1:]}, nil
}

func writePDU(w io.Writer, pdu modbus.ProtocolDataUnit) {
	fmt.Fprintf(w, "%02X %X\n", pdu.FunctionCode, pdu.Data)
	if pdu.IsException() {
		fmt.Fprintf(w, "exception: %v\n", pdu.ExceptionError())
	}
}

func writeCounters(w io.Writer, c *slave.Counters) {
	snap := c.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%-16s %d\n", name, snap[name])
	}
}
