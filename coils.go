// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"fmt"
	"strings"

	"github.com/ffutop/modbus-slave/internal/device"
	"github.com/spf13/cobra"
)

func newCoilsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coils",
		Short: "Inspect or change the coil image",
	}
	cmd.AddCommand(newCoilsGetCmd(a))
	cmd.AddCommand(newCoilsSetCmd(a))
	return cmd
}

func newCoilsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <addresses>",
		Short: `Print coil states, e.g. "coils get 0-7,100"`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}

			dev, err := a.openDevice()
			if err != nil {
				return err
			}
			defer closeDevice(dev)

			w := cmd.OutOrStdout()
			for _, addr := range addrs {
				ok, err := dev.ValidateCoil(addr)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(w, "%d\tillegal\n", addr)
					continue
				}
				on, err := dev.ReadCoil(addr)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%s\n", addr, onOff(on))
			}
			return nil
		},
	}
}

func newCoilsSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <addresses> <on|off>",
		Short: `Switch coils on or off, e.g. "coils set 0-3 on"`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			on, err := parseState(args[1])
			if err != nil {
				return err
			}

			dev, err := a.openDevice()
			if err != nil {
				return err
			}
			defer closeDevice(dev)

			for _, addr := range addrs {
				if err := dev.WriteCoil(addr, on); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d coil(s) set %s\n", len(addrs), onOff(on))
			return nil
		},
	}
}

func parseAddressArg(s string) ([]uint16, error) {
	addrs, err := device.ParseAddressList(s)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no coil addresses given")
	}
	return addrs, nil
}

func parseState(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid coil state %q, want on or off", s)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
