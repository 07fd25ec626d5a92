// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yasha-space/rcmon/pkg/duml"
)

var pushTestTimeout int

var pushTestCmd = &cobra.Command{
	Use:   "push_test",
	Short: "Test connection by waiting for a valid RC push frame",
	Long: `Wait for a valid RC push frame on the connection until timeout.

This command connects to the byte source, sends the push-enable command,
and waits for a complete push frame passing both checksum gates. Noise
and frames of other classes are ignored.

Exit codes:
  0 - Push frame received before timeout
  1 - Timeout reached without receiving a push frame
  2 - Connection error

Useful for checking that a controller is attached and streaming.`,
	RunE: runPushTest,
}

func init() {
	rootCmd.AddCommand(pushTestCmd)
	pushTestCmd.Flags().IntVar(&pushTestTimeout, "timeout", 10, "Timeout in seconds to wait for a push frame")
}

func runPushTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("rcmon - Push Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", pushTestTimeout)
	fmt.Printf("Waiting for RC push frame...\n\n")

	// Kick the controller into push mode; harmless on free-streaming sources.
	var enable [64]byte
	if n, err := duml.BuildEnableCommand(enable[:], 1); err == nil {
		conn.Write(enable[:n])
	}

	stateChan := make(chan duml.RCState, 1)
	errChan := make(chan error, 1)

	parser := duml.NewParser(func(state *duml.RCState, _ any) {
		select {
		case stateChan <- *state:
		default:
		}
	}, nil)

	// Reader goroutine
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if parser.Feed(buf[:n]) > 0 {
				return
			}
		}
	}()

	select {
	case state := <-stateChan:
		stats := parser.Stats()
		fmt.Printf("SUCCESS: Received RC push frame\n")
		fmt.Printf("  State: %s\n", duml.FormatStateLine(&state))
		fmt.Printf("  Stream: %d bytes, %d valid frames, %d dropped\n",
			stats.BytesIn, stats.FramesValid, stats.HeaderRejects+stats.FrameCRCErrors)
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(pushTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No push frame received within %d seconds\n", pushTestTimeout)
		os.Exit(1)
	}

	return nil
}
