// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds optional defaults normally passed as flags
type Config struct {
	Connection ConnectionConfig `toml:"connection"`
	Emulator   EmulatorConfig   `toml:"emulator"`
}

// ConnectionConfig mirrors the persistent connection flags
type ConnectionConfig struct {
	Port     string `toml:"port"`
	Baud     int    `toml:"baud"`
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Socket   string `toml:"socket"`
	USB      bool   `toml:"usb"`
}

// EmulatorConfig holds emulator-specific settings
type EmulatorConfig struct {
	RateHz    int    `toml:"rate_hz"`
	Recording string `toml:"recording"`
}

// LoadConfig reads the configuration from the given path
func LoadConfig(path string) (Config, error) {
	var conf Config

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}

	if err := toml.Unmarshal(data, &conf); err != nil {
		return conf, err
	}

	return conf, nil
}

// applyConfigDefaults fills in connection flags the user did not set from
// the config file. Explicit flags always win. Missing default config file
// is not an error; a missing --config file is.
func applyConfigDefaults() {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = "rcmon.toml"
	}

	conf, err := LoadConfig(path)
	if err != nil {
		if explicit {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(2)
		}
		return
	}

	flags := rootCmd.PersistentFlags()
	if !flags.Changed("port") && conf.Connection.Port != "" {
		portName = conf.Connection.Port
	}
	if !flags.Changed("baud") && conf.Connection.Baud != 0 {
		baudRate = conf.Connection.Baud
	}
	if !flags.Changed("url") && conf.Connection.URL != "" {
		wsURL = conf.Connection.URL
	}
	if !flags.Changed("username") && conf.Connection.Username != "" {
		wsUsername = conf.Connection.Username
	}
	if !flags.Changed("socket") && conf.Connection.Socket != "" {
		socketPath = conf.Connection.Socket
	}
	if !flags.Changed("usb") && conf.Connection.USB {
		useUSB = true
	}
	if !emulatorFlagChanged("rate") && conf.Emulator.RateHz > 0 {
		emulatorRateHz = conf.Emulator.RateHz
	}
	if !emulatorFlagChanged("output") && conf.Emulator.Recording != "" {
		emulatorRecordPath = conf.Emulator.Recording
	}
}

func emulatorFlagChanged(name string) bool {
	f := emulatorCmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
