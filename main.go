// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ffutop/modbus-slave/internal/config"
	"github.com/ffutop/modbus-slave/internal/device"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "coilslave",
		Short: "Modbus slave serving Read Coils from a local coil device",
		Long: `coilslave executes Modbus Read Coils (0x01) request PDUs against a
local coil device and prints the response PDU. The coil image can be kept
in memory or persisted to a file, a memory-mapped file or an SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.LoadConfig(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			setupLogger(cfg.Log)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringP("log-level", "v", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("log-file", "L", "", "Log file path (default stdout)")

	rootCmd.AddCommand(newRequestCmd(a))
	rootCmd.AddCommand(newCoilsCmd(a))
	return rootCmd
}

// openDevice opens the configured coil device.
func (a *app) openDevice() (*device.Device, error) {
	dev, err := device.New(a.cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to open coil device: %w", err)
	}
	start, end := dev.Window()
	slog.Debug("Coil device ready", "start", start, "end", end, "persistence", a.cfg.Device.Persistence.Type)
	return dev, nil
}

func closeDevice(dev *device.Device) {
	if err := dev.Close(); err != nil {
		slog.Error("Failed to close coil device", "err", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	// Command output goes to stdout, so logs default to stderr.
	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, falling back to stderr: %v\n", err)
			handler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
