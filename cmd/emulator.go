// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yasha-space/rcmon/pkg/duml"
)

// Emulator input model: sticks decay toward centre, buttons are
// momentary per tick, wheels hold position, flight mode latches.
const (
	stickStep = 66
	wheelStep = 33
	deltaStep = 5
)

var (
	emulatorRecordPath string
	emulatorRateHz     = 20
)

var emulatorCmd = &cobra.Command{
	Use:   "emulator",
	Short: "Interactive RC emulator driving the parsing pipeline",
	Long: `Synthesise RC push frames from keyboard input and run them through the
full pipeline: virtual state -> 17-byte payload -> DUML frame -> parser ->
decoded state. The display shows the state as parsed back out of the wire
bytes, so what you see is what a consumer of the parser would see.

Keys:
  w/a/s/d      left stick        arrows      right stick
  p h z x      pause/home/shutter/record
  1 2 3        custom buttons    i j k l o   5D up/left/down/right/centre
  [ ] \        flight mode       -/= 9/0     left/right wheel
  , .          right wheel delta r           reset
  q            quit

With --output, every frame fed to the parser is also appended to a
recording file, replayable with 'rcmon verify'.`,
	RunE: runEmulator,
}

func init() {
	rootCmd.AddCommand(emulatorCmd)
	emulatorCmd.Flags().StringVarP(&emulatorRecordPath, "output", "o", "", "Record built frames to file")
	emulatorCmd.Flags().IntVar(&emulatorRateHz, "rate", 20, "Frame rate in Hz")
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type emulatorTickMsg time.Time

type emulatorModel struct {
	// Virtual controller inputs (pre-encoding)
	input duml.RCState

	// State as parsed back from the wire
	parsed   duml.RCState
	frameLen int

	parser   *duml.Parser
	seq      uint16
	recFile  *os.File
	recBytes int

	width    int
	height   int
	quitting bool
	buildErr error
}

func initialEmulatorModel(recFile *os.File) *emulatorModel {
	m := &emulatorModel{
		input:   duml.RCState{FlightMode: duml.FlightModeNormal},
		recFile: recFile,
	}
	m.parser = duml.NewParser(func(s *duml.RCState, _ any) {
		m.parsed = *s
	}, nil)
	return m
}

func (m *emulatorModel) Init() tea.Cmd {
	return emulatorTickCmd()
}

func emulatorTickCmd() tea.Cmd {
	interval := time.Second / time.Duration(emulatorRateHz)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return emulatorTickMsg(t)
	})
}

func (m *emulatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case emulatorTickMsg:
		m.pumpFrame()
		m.decay()
		return m, emulatorTickCmd()
	}

	return m, nil
}

func (m *emulatorModel) handleKey(msg tea.KeyMsg) {
	clampAxis := func(v int16, d int) int16 {
		return int16(clamp(int(v)+d, -duml.StickMax, duml.StickMax))
	}

	switch msg.String() {
	// Left stick
	case "w":
		m.input.StickLeft.Vertical = clampAxis(m.input.StickLeft.Vertical, stickStep)
	case "s":
		m.input.StickLeft.Vertical = clampAxis(m.input.StickLeft.Vertical, -stickStep)
	case "a":
		m.input.StickLeft.Horizontal = clampAxis(m.input.StickLeft.Horizontal, -stickStep)
	case "d":
		m.input.StickLeft.Horizontal = clampAxis(m.input.StickLeft.Horizontal, stickStep)

	// Right stick
	case "up":
		m.input.StickRight.Vertical = clampAxis(m.input.StickRight.Vertical, stickStep)
	case "down":
		m.input.StickRight.Vertical = clampAxis(m.input.StickRight.Vertical, -stickStep)
	case "left":
		m.input.StickRight.Horizontal = clampAxis(m.input.StickRight.Horizontal, -stickStep)
	case "right":
		m.input.StickRight.Horizontal = clampAxis(m.input.StickRight.Horizontal, stickStep)

	// Buttons (momentary)
	case "p":
		m.input.Pause = true
	case "h":
		m.input.GoHome = true
	case "z":
		m.input.Shutter = true
	case "x":
		m.input.Record = true
	case "1":
		m.input.Custom1 = true
	case "2":
		m.input.Custom2 = true
	case "3":
		m.input.Custom3 = true

	// 5D joystick (momentary)
	case "i":
		m.input.FiveD.Up = true
	case "k":
		m.input.FiveD.Down = true
	case "j":
		m.input.FiveD.Left = true
	case "l":
		m.input.FiveD.Right = true
	case "o":
		m.input.FiveD.Center = true

	// Flight mode (latching)
	case "[":
		m.input.FlightMode = duml.FlightModeSport
	case "]":
		m.input.FlightMode = duml.FlightModeNormal
	case "\\":
		m.input.FlightMode = duml.FlightModeTripod

	// Left wheel (holds position)
	case "-":
		m.input.LeftWheel = clampAxis(m.input.LeftWheel, -wheelStep)
	case "=":
		m.input.LeftWheel = clampAxis(m.input.LeftWheel, wheelStep)

	// Right wheel (holds position)
	case "9":
		m.input.RightWheel = clampAxis(m.input.RightWheel, -wheelStep)
	case "0":
		m.input.RightWheel = clampAxis(m.input.RightWheel, wheelStep)

	// Right wheel delta (momentary per tick)
	case ",":
		m.input.RightWheelDelta = -deltaStep
	case ".":
		m.input.RightWheelDelta = deltaStep

	// Reset all
	case "r":
		m.input = duml.RCState{FlightMode: duml.FlightModeNormal}
	}
}

// pumpFrame runs one tick of the pipeline: encode the virtual state,
// frame it, and feed the result through the parser.
func (m *emulatorModel) pumpFrame() {
	payload := duml.EncodePushPayload(&m.input)

	var frame [64]byte
	n, err := duml.BuildFrame(frame[:], &duml.FrameConfig{
		SenderType:   duml.DeviceRC,
		ReceiverType: duml.DeviceApp,
		Seq:          m.seq,
		CmdSet:       duml.CmdSetRC,
		CmdID:        duml.CmdIDPushRC,
		Payload:      payload[:],
	})
	if err != nil {
		m.buildErr = err
		return
	}
	m.seq++
	m.frameLen = n

	m.parser.Feed(frame[:n])
	if m.recFile != nil {
		if _, err := m.recFile.Write(frame[:n]); err == nil {
			m.recBytes += n
		}
	}
}

// decay pulls released sticks back toward centre and clears momentary
// inputs. Wheels hold position; flight mode latches.
func (m *emulatorModel) decay() {
	m.input.StickLeft.Horizontal /= 2
	m.input.StickLeft.Vertical /= 2
	m.input.StickRight.Horizontal /= 2
	m.input.StickRight.Vertical /= 2

	m.input.Pause = false
	m.input.GoHome = false
	m.input.Shutter = false
	m.input.Record = false
	m.input.Custom1 = false
	m.input.Custom2 = false
	m.input.Custom3 = false
	m.input.FiveD = duml.FiveD{}
	m.input.RightWheelDelta = 0
}

func (m *emulatorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))
	pressedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("10")).
		Bold(true)
	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("RCMON - RC EMULATOR"))
	s.WriteString("  ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%d Hz | Seq: %d | Frame: %dB", emulatorRateHz, m.seq, m.frameLen)))
	if m.recFile != nil {
		s.WriteString("  " + errorStyle.Render(fmt.Sprintf("[REC %dB]", m.recBytes)))
	}
	s.WriteString("\n\n")

	if m.buildErr != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("build error: %v", m.buildErr)))
		s.WriteString("\n\n")
	}

	// Everything below renders the PARSED state, proving the round trip.
	p := m.parsed

	sticks := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(renderStick("LEFT STICK (wasd)", p.StickLeft)),
		" ",
		boxStyle.Render(renderStick("RIGHT STICK (arrows)", p.StickRight)),
	)
	s.WriteString(sticks)
	s.WriteString("\n")

	btn := func(label string, pressed bool) string {
		if pressed {
			return pressedStyle.Render("[" + label + "]")
		}
		return headerStyle.Render("[" + label + "]")
	}

	s.WriteString(labelStyle.Render("BUTTONS:") + " " +
		btn("PAUSE", p.Pause) + " " + btn("HOME", p.GoHome) + " " +
		btn("SHUT", p.Shutter) + " " + btn("REC", p.Record) + " " +
		btn("C1", p.Custom1) + " " + btn("C2", p.Custom2) + " " + btn("C3", p.Custom3))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("5D:     ") + " " +
		btn("U", p.FiveD.Up) + " " + btn("D", p.FiveD.Down) + " " +
		btn("L", p.FiveD.Left) + " " + btn("R", p.FiveD.Right) + " " +
		btn("CTR", p.FiveD.Center))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("MODE:   ") + " " +
		btn("Sport", p.FlightMode == duml.FlightModeSport) + " " +
		btn("Normal", p.FlightMode == duml.FlightModeNormal) + " " +
		btn("Tripod", p.FlightMode == duml.FlightModeTripod))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("WHEELS: ") + " " + valueStyle.Render(
		fmt.Sprintf("Left: %+4d   Right: %+4d   Delta: %+3d",
			p.LeftWheel, p.RightWheel, p.RightWheelDelta)))
	s.WriteString("\n\n")

	s.WriteString(headerStyle.Render("wasd=L.Stick  arrows=R.Stick  p=Pause h=Home z=Shut x=Rec\n"))
	s.WriteString(headerStyle.Render("1/2/3=Custom  ijklo=5D  [/]/\\=Mode  -/==L.Whl  9/0=R.Whl\n"))
	s.WriteString(headerStyle.Render(",/.=R.Whl.Delta  r=Reset  q=Quit\n"))

	return s.String()
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

func runEmulator(cmd *cobra.Command, args []string) error {
	var recFile *os.File
	if emulatorRecordPath != "" {
		var err error
		recFile, err = os.Create(emulatorRecordPath)
		if err != nil {
			return fmt.Errorf("failed to open recording file: %w", err)
		}
		defer recFile.Close()
	}

	if emulatorRateHz < 1 || emulatorRateHz > 200 {
		return fmt.Errorf("rate must be between 1 and 200 Hz")
	}

	m := initialEmulatorModel(recFile)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
