// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Yasha Space Labs

package cmd

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/yasha-space/rcmon/pkg/duml"
)

// Timings from the USB reader: fall back to polling with channel requests
// when no push data arrives, as init-mode controllers stay silent until
// polled.
const (
	pushTimeout  = 2 * time.Second
	pollInterval = 50 * time.Millisecond
)

var monitorNoHandshake bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live TUI of RC button and stick state",
	Long: `Read DUML frames from the connection and display the decoded RC state.

On connect the push-enable command is sent once. If no push frame arrives
within 2 seconds, the monitor falls back to polling the controller with
channel requests every 50 ms. Use --no-handshake on sources that stream
freely (e.g. the DUSS interface or a recorded socket stream).`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorNoHandshake, "no-handshake", false, "Do not send enable/poll commands")
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type monitorTickMsg time.Time

type pushMsg struct {
	state     duml.RCState
	anomalies []duml.ValidationError
}

type statsMsg duml.ParserStats

type readErrMsg struct {
	err error
}

//////////////////////////////////////////////////////////////
// Model
//////////////////////////////////////////////////////////////

type logEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

type monitorModel struct {
	connInfo string

	state    duml.RCState
	havePush bool
	lastPush time.Time

	stats     *duml.Statistics
	anomalies []duml.ValidationError

	eventLog      []logEntry
	maxLogEntries int

	waitSpinner spinner.Model

	width    int
	height   int
	quitting bool
	readErr  error
}

func initialMonitorModel(connInfo string) monitorModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return monitorModel{
		connInfo:      connInfo,
		stats:         duml.NewStatistics(),
		maxLogEntries: 100,
		waitSpinner:   sp,
		width:         80,
		height:        24,
	}
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, logEntry{time.Now(), message, isError})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea interface
//////////////////////////////////////////////////////////////

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(monitorTickCmd(), m.waitSpinner.Tick)
}

func monitorTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return monitorTickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case monitorTickMsg:
		m.stats.CalculateRates()
		return m, monitorTickCmd()

	case pushMsg:
		m.state = msg.state
		m.havePush = true
		m.lastPush = time.Now()
		if len(msg.anomalies) > 0 && len(m.anomalies) == 0 {
			for _, a := range msg.anomalies {
				m.addLogEntry(a.Message, false)
			}
		}
		m.anomalies = msg.anomalies

	case statsMsg:
		m.stats.Observe(duml.ParserStats(msg))

	case readErrMsg:
		m.readErr = msg.err
		m.addLogEntry(fmt.Sprintf("read error: %v", msg.err), true)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.waitSpinner, cmd = m.waitSpinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) View() string {
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
	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))
	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("RCMON - RC INPUT MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit", m.connInfo)))
	s.WriteString("\n\n")

	if !m.havePush {
		s.WriteString(m.waitSpinner.View())
		s.WriteString(warningStyle.Render(" Waiting for RC push data..."))
		s.WriteString("\n\n")
	} else if time.Since(m.lastPush) > pushTimeout {
		s.WriteString(warningStyle.Render(fmt.Sprintf("⚠ Last push %s ago", time.Since(m.lastPush).Round(time.Second))))
		s.WriteString("\n\n")
	}

	// Sticks
	sticks := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(renderStick("LEFT STICK", m.state.StickLeft)),
		" ",
		boxStyle.Render(renderStick("RIGHT STICK", m.state.StickRight)),
	)
	s.WriteString(sticks)
	s.WriteString("\n")

	// Buttons
	btn := func(label string, pressed bool) string {
		if pressed {
			return pressedStyle.Render("[" + label + "]")
		}
		return headerStyle.Render("[" + label + "]")
	}

	s.WriteString(labelStyle.Render("BUTTONS:") + " " +
		btn("PAUSE", m.state.Pause) + " " +
		btn("HOME", m.state.GoHome) + " " +
		btn("SHUT", m.state.Shutter) + " " +
		btn("REC", m.state.Record) + " " +
		btn("C1", m.state.Custom1) + " " +
		btn("C2", m.state.Custom2) + " " +
		btn("C3", m.state.Custom3))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("5D:     ") + " " +
		btn("U", m.state.FiveD.Up) + " " +
		btn("D", m.state.FiveD.Down) + " " +
		btn("L", m.state.FiveD.Left) + " " +
		btn("R", m.state.FiveD.Right) + " " +
		btn("CTR", m.state.FiveD.Center))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("MODE:   ") + " " +
		btn("Sport", m.state.FlightMode == duml.FlightModeSport) + " " +
		btn("Normal", m.state.FlightMode == duml.FlightModeNormal) + " " +
		btn("Tripod", m.state.FlightMode == duml.FlightModeTripod))
	s.WriteString("\n")

	s.WriteString(labelStyle.Render("WHEELS: ") + " " + valueStyle.Render(
		fmt.Sprintf("Left: %+4d   Right: %+4d   Delta: %+3d",
			m.state.LeftWheel, m.state.RightWheel, m.state.RightWheelDelta)))
	s.WriteString("\n\n")

	// Stream statistics
	stats := m.stats.Current
	statsContent := fmt.Sprintf("%s %s   %s %s   %s %s   %s %s",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", stats.FramesValid)),
		labelStyle.Render("Push:"), valueStyle.Render(fmt.Sprintf("%d (%.1f/s)", stats.PushFrames, m.stats.PushRate)),
		labelStyle.Render("Dropped:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.Dropped())),
		labelStyle.Render("Noise:"), headerStyle.Render(fmt.Sprintf("%dB", stats.NoiseBytes)),
	)
	s.WriteString(boxStyle.Render(statsContent))
	s.WriteString("\n")

	// Anomalies on the latest snapshot
	for _, a := range m.anomalies {
		s.WriteString(warningStyle.Render("⚠ " + a.Message))
		s.WriteString("\n")
	}

	// Event log
	if len(m.eventLog) > 0 {
		s.WriteString("\n" + labelStyle.Render("Recent Events:") + "\n")
		logHeight := m.height - 22
		if logHeight < 3 {
			logHeight = 3
		}
		startIdx := len(m.eventLog) - logHeight
		if startIdx < 0 {
			startIdx = 0
		}
		for _, entry := range m.eventLog[startIdx:] {
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				s.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), errorStyle.Render("✗ "+entry.message)))
			} else {
				s.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(timestamp), warningStyle.Render("ℹ "+entry.message)))
			}
		}
	}

	return s.String()
}

// renderStick draws an 11x5 deflection box with the stick position marked.
func renderStick(label string, st duml.Stick) string {
	const cols, rows = 11, 5

	cx := clamp(int(st.Horizontal)*(cols/2)/duml.StickMax+cols/2, 0, cols-1)
	cy := clamp(rows/2-int(st.Vertical)*(rows/2)/duml.StickMax, 0, rows-1)

	var b strings.Builder
	b.WriteString(label + "\n")
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			switch {
			case r == cy && c == cx:
				b.WriteByte('X')
			case r == rows/2 && c == cols/2:
				b.WriteByte('+')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "H:%+5d V:%+5d", st.Horizontal, st.Vertical)
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	m := initialMonitorModel(connInfo)
	p := tea.NewProgram(m, tea.WithAltScreen())

	var lastPushNano atomic.Int64
	lastPushNano.Store(time.Now().UnixNano())

	parser := duml.NewParser(func(state *duml.RCState, _ any) {
		lastPushNano.Store(time.Now().UnixNano())
		p.Send(pushMsg{state: *state, anomalies: duml.ValidateState(state)})
	}, nil)

	// Reader goroutine
	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				if err == ErrConnectionClosed {
					p.Send(readErrMsg{err: err})
					return
				}
				p.Send(readErrMsg{err: err})
				continue
			}
			parser.Feed(buf[:n])
			p.Send(statsMsg(parser.Stats()))
		}
	}()

	// Handshake goroutine: enable once, then poll while pushes are absent
	if !monitorNoHandshake {
		go func() {
			var frame [64]byte
			seq := uint16(1)

			if n, err := duml.BuildEnableCommand(frame[:], seq); err == nil {
				seq++
				if _, err := conn.Write(frame[:n]); err != nil {
					log.Printf("enable command write failed: %v", err)
					return
				}
			}

			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()
			for range ticker.C {
				select {
				case <-done:
					return
				default:
				}
				idle := time.Since(time.Unix(0, lastPushNano.Load()))
				if idle < pushTimeout {
					continue
				}
				if n, err := duml.BuildChannelRequest(frame[:], seq); err == nil {
					seq++
					if _, err := conn.Write(frame[:n]); err != nil {
						return
					}
				}
			}
		}()
	}

	_, err = p.Run()
	return err
}
