// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Unix domain socket flag
	socketPath string

	// USB flag
	useUSB bool

	// Config file flag
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "rcmon",
	Short: "DJI RM510 RC input monitor",
	Long: `rcmon - Monitor and decode DUML RC button/stick status pushes.

Reads raw DUML frames from a byte source, resynchronises on valid frame
boundaries, and decodes the remote controller's button and stick state.
Includes an interactive emulator that synthesises push frames and runs
them back through the same parsing pipeline.

Connection modes:
  Serial:      --port /dev/ttyACM0 [--baud 115200]
  WebSocket:   --url ws://host/path [--username user]
  Unix socket: --socket /dev/socket/dji_link
  USB:         --usb (DJI VID 0x2CA3, bulk endpoints)

For WebSocket authentication, the password is read from the RCMON_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.

Defaults for the connection flags other than --no-ssl-verify may be placed
in rcmon.toml (or a file named with --config).`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Unix domain socket path")
	rootCmd.PersistentFlags().BoolVar(&useUSB, "usb", false, "Read from a DJI USB device")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default rcmon.toml if present)")

	cobra.OnInitialize(applyConfigDefaults)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
