// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yasha-space/rcmon/pkg/duml"
)

var verifyChunkSize int

var verifyCmd = &cobra.Command{
	Use:   "verify <recording>",
	Short: "Replay a recording file through the parser",
	Long: `Read a recorded DUML byte stream (e.g. produced by 'rcmon emulator -o')
and feed it through a fresh parser in chunks, reporting how many push
frames decode and the final stream statistics.

Exit code 0 when at least one push frame decodes, 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().IntVar(&verifyChunkSize, "chunk", 64, "Feed chunk size in bytes")
}

func runVerify(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if verifyChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive")
	}

	pushes := 0
	var last duml.RCState
	parser := duml.NewParser(func(state *duml.RCState, _ any) {
		pushes++
		last = *state
	}, nil)

	buf := make([]byte, verifyChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	stats := parser.Stats()
	fmt.Printf("%s: %d bytes, %d valid frames, %d push frames\n",
		args[0], stats.BytesIn, stats.FramesValid, stats.PushFrames)
	fmt.Printf("  dropped: %d header rejects, %d frame checksum errors, %d noise bytes\n",
		stats.HeaderRejects, stats.FrameCRCErrors, stats.NoiseBytes)
	if pushes > 0 {
		fmt.Printf("  last state: %s\n", duml.FormatStateLine(&last))
		return nil
	}

	os.Exit(1)
	return nil
}
