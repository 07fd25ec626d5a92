// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"fmt"
	"strings"
)

// String returns the human-readable name of a flight mode.
func (m FlightMode) String() string {
	switch m {
	case FlightModeSport:
		return "Sport"
	case FlightModeNormal:
		return "Normal"
	case FlightModeTripod:
		return "Tripod"
	default:
		return "Unknown"
	}
}

// String returns the human-readable name of a device type.
func (d DeviceType) String() string {
	switch d {
	case DeviceAny:
		return "ANY"
	case DeviceCamera:
		return "CAMERA"
	case DeviceApp:
		return "APP"
	case DeviceFlightController:
		return "FC"
	case DeviceGimbal:
		return "GIMBAL"
	case DeviceRC:
		return "RC"
	case DeviceWorkstation:
		return "PC"
	default:
		return fmt.Sprintf("DEV_%d", uint8(d))
	}
}

// FormatCommand names known (command set, command id) pairs.
func FormatCommand(cmdSet, cmdID uint8) string {
	if cmdSet == CmdSetRC {
		switch cmdID {
		case CmdIDPushRC:
			return "RC_PUSH"
		case CmdIDEnablePush:
			return "RC_ENABLE_PUSH"
		case CmdIDChannelRequest:
			return "RC_CHANNEL_REQUEST"
		}
	}
	return fmt.Sprintf("CMD_%02X_%02X", cmdSet, cmdID)
}

// FormatStateLine renders a snapshot as a single line, suitable for
// stream logging.
func FormatStateLine(s *RCState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "L[%+5d,%+5d] R[%+5d,%+5d]",
		s.StickLeft.Horizontal, s.StickLeft.Vertical,
		s.StickRight.Horizontal, s.StickRight.Vertical)
	fmt.Fprintf(&b, " W[%+5d,%+5d] d%+3d", s.LeftWheel, s.RightWheel, s.RightWheelDelta)
	fmt.Fprintf(&b, " mode=%s", s.FlightMode)

	names := []struct {
		label   string
		pressed bool
	}{
		{"PAUSE", s.Pause}, {"HOME", s.GoHome}, {"SHUT", s.Shutter}, {"REC", s.Record},
		{"C1", s.Custom1}, {"C2", s.Custom2}, {"C3", s.Custom3},
		{"5D_U", s.FiveD.Up}, {"5D_D", s.FiveD.Down}, {"5D_L", s.FiveD.Left},
		{"5D_R", s.FiveD.Right}, {"5D_C", s.FiveD.Center},
	}
	for _, n := range names {
		if n.pressed {
			b.WriteString(" " + n.label)
		}
	}

	return b.String()
}

// FormatFrame renders a frame header summary with a payload hex dump.
func FormatFrame(f *Frame) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (set=0x%02X id=0x%02X) %s/%d -> %s/%d seq=%d len=%d",
		FormatCommand(f.CmdSet, f.CmdID), f.CmdSet, f.CmdID,
		f.SenderType, f.SenderIndex, f.ReceiverType, f.ReceiverIndex,
		f.Seq, f.Length)

	if f.PackType == PackResponse {
		b.WriteString(" RSP")
	}
	if f.Ack != AckNone {
		fmt.Fprintf(&b, " ack=%d", f.Ack)
	}
	if f.Encryption != 0 {
		fmt.Fprintf(&b, " enc=%d", f.Encryption)
	}

	if len(f.Payload) > 0 {
		b.WriteString("\n  payload: ")
		for i, p := range f.Payload {
			if i > 0 && i%16 == 0 {
				b.WriteString("\n           ")
			}
			fmt.Fprintf(&b, "%02X ", p)
		}
	}

	return b.String()
}
