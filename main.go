// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs
//
// rcmon - DJI RM510 RC input monitor
//
// A CLI tool for monitoring, decoding and emulating DUML RC button/stick
// status pushes.

package main

import (
	"os"

	"github.com/yasha-space/rcmon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
