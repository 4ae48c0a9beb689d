// Copyright (c) 2025-2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ffutop/modbus-slave/modbus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Number of addressable coils.
const CoilSpace = 65536

// Config defines the global configuration structure
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Slave  SlaveConfig  `mapstructure:"slave"`
	Device DeviceConfig `mapstructure:"device"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
	File  string `mapstructure:"file"`  // Log file path
}

// SlaveConfig defines the request processing settings
type SlaveConfig struct {
	ResponseBufferSize int `mapstructure:"response_buffer_size"`
}

// DeviceConfig defines the local coil device
type DeviceConfig struct {
	Coils       CoilsConfig       `mapstructure:"coils"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// CoilsConfig defines the accessible coil window
type CoilsConfig struct {
	Start  int    `mapstructure:"start"`
	Count  int    `mapstructure:"count"`
	Preset string `mapstructure:"preset"` // Coils switched on at start-up: "0-3,10"
}

// PersistenceConfig defines data storage settings
type PersistenceConfig struct {
	Type string `mapstructure:"type"` // "memory", "file", "mmap", "sql"
	Path string `mapstructure:"path"` // File path for "file/mmap", DSN for "sql"
}

// BindFlags binds command line flags to configuration keys.
// Flags that are not defined in fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	keys := map[string]string{
		"log-level":   "log.level",
		"log-file":    "log.file",
		"buffer-size": "slave.response_buffer_size",
	}
	for flag, key := range keys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// New returns a viper instance with defaults applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("slave.response_buffer_size", modbus.MaxPDUDataSize)
	v.SetDefault("device.coils.start", 0)
	v.SetDefault("device.coils.count", CoilSpace)
	v.SetDefault("device.coils.preset", "")
	v.SetDefault("device.persistence.type", "memory")
	v.SetDefault("device.persistence.path", "")
	return v
}

// LoadConfig loads configuration from file. A missing file is not an error
// when configFile is empty: defaults and flags are used instead.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/coilslave/")
		v.AddConfigPath("$HOME/.coilslave")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Log.Level = strings.ToLower(config.Log.Level)
	config.Device.Persistence.Type = strings.ToLower(config.Device.Persistence.Type)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks configuration correctness.
func (c *Config) Validate() error {
	if n := c.Slave.ResponseBufferSize; n < 2 || n > modbus.MaxPDUDataSize {
		return fmt.Errorf("slave.response_buffer_size %d out of range [2, %d]", n, modbus.MaxPDUDataSize)
	}

	coils := c.Device.Coils
	if coils.Start < 0 || coils.Start >= CoilSpace {
		return fmt.Errorf("device.coils.start %d out of range [0, %d]", coils.Start, CoilSpace-1)
	}
	if coils.Count < 1 || coils.Start+coils.Count > CoilSpace {
		return fmt.Errorf("device.coils.count %d does not fit the coil space from start %d", coils.Count, coils.Start)
	}

	p := c.Device.Persistence
	switch p.Type {
	case "memory":
	case "file", "mmap", "sql":
		if p.Path == "" {
			return fmt.Errorf("device.persistence.path is required for %q storage", p.Type)
		}
	default:
		return fmt.Errorf("unknown persistence type %q", p.Type)
	}
	return nil
}
