// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/yasha-space/rcmon/pkg/duml"
)

var rawLogShowPush bool

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display every valid DUML frame in human-readable format",
	Long: `Continuously decode and display DUML frames as they arrive.

Every frame passing both checksum gates is shown with timestamp, routing,
command set/id and payload hex dump. RC push frames are additionally
decoded to a one-line controller state unless --push=false is given.

Supports all connection modes.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogShowPush, "push", true, "Decode RC push frames to controller state")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("rcmon - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	parser := duml.NewParser(func(state *duml.RCState, _ any) {
		if !rawLogShowPush {
			return
		}
		fmt.Printf("  state: %s\n", duml.FormatStateLine(state))
		for _, anomaly := range duml.ValidateState(state) {
			fmt.Printf("  ANOMALY: %s\n", anomaly.Message)
		}
	}, nil)

	parser.SetFrameHandler(func(f *duml.Frame) {
		timestamp := time.Now().Format("15:04:05.000")
		fmt.Printf("[%s] %s\n", timestamp, duml.FormatFrame(f))
	})

	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			// A closed WebSocket is permanent - exit gracefully
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		parser.Feed(buf[:n])
	}
}
