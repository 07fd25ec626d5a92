// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFrame_Fields(t *testing.T) {
	payload := []byte{0xDE, 0xAD}
	buf := make([]byte, 64)
	n, err := BuildFrame(buf, &FrameConfig{
		SenderType:    DeviceRC,
		SenderIndex:   1,
		ReceiverType:  DeviceApp,
		ReceiverIndex: 2,
		Seq:           0xCAFE,
		PackType:      PackResponse,
		Ack:           AckAfterExec,
		Encryption:    5,
		CmdSet:        0x06,
		CmdID:         0x42,
		Payload:       payload,
	})
	if err != nil {
		t.Fatal(err)
	}

	f, err := ParseFrame(buf[:n])
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if f.Length != n || f.Version != ProtocolVersion {
		t.Errorf("length/version = %d/%d", f.Length, f.Version)
	}
	if f.SenderType != DeviceRC || f.SenderIndex != 1 {
		t.Errorf("sender = %v/%d", f.SenderType, f.SenderIndex)
	}
	if f.ReceiverType != DeviceApp || f.ReceiverIndex != 2 {
		t.Errorf("receiver = %v/%d", f.ReceiverType, f.ReceiverIndex)
	}
	if f.Seq != 0xCAFE || f.PackType != PackResponse || f.Ack != AckAfterExec || f.Encryption != 5 {
		t.Errorf("seq/pack/ack/enc = %04X/%d/%d/%d", f.Seq, f.PackType, f.Ack, f.Encryption)
	}
	if f.CmdSet != 0x06 || f.CmdID != 0x42 {
		t.Errorf("cmd = %02X/%02X", f.CmdSet, f.CmdID)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Errorf("payload = % X", f.Payload)
	}
	if f.IsPush() {
		t.Error("non-push frame reported as push")
	}
}

func TestParseFrame_Errors(t *testing.T) {
	if _, err := ParseFrame(make([]byte, 5)); err == nil {
		t.Error("expected error for short buffer")
	}

	buf := make([]byte, 64)
	n, _ := BuildFrame(buf, &FrameConfig{CmdSet: 1, CmdID: 2})

	bad := append([]byte(nil), buf[:n]...)
	bad[0] = 0x54
	if _, err := ParseFrame(bad); err == nil {
		t.Error("expected error for bad SOF")
	}

	if _, err := ParseFrame(buf[:n+1]); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestParseFrame_IsPush(t *testing.T) {
	frame := buildFuzzPushFrame(t, centredPayload())
	f, err := ParseFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsPush() {
		t.Error("push frame not recognised")
	}
}

// ============================================================
// Formatter
// ============================================================

func TestFlightMode_String(t *testing.T) {
	tests := map[FlightMode]string{
		FlightModeSport:   "Sport",
		FlightModeNormal:  "Normal",
		FlightModeTripod:  "Tripod",
		FlightModeUnknown: "Unknown",
		FlightMode(7):     "Unknown",
	}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("FlightMode(%d).String() = %q, want %q", mode, got, want)
		}
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		set, id uint8
		want    string
	}{
		{CmdSetRC, CmdIDPushRC, "RC_PUSH"},
		{CmdSetRC, CmdIDEnablePush, "RC_ENABLE_PUSH"},
		{CmdSetRC, CmdIDChannelRequest, "RC_CHANNEL_REQUEST"},
		{0x01, 0x02, "CMD_01_02"},
	}
	for _, tt := range tests {
		if got := FormatCommand(tt.set, tt.id); got != tt.want {
			t.Errorf("FormatCommand(%02X, %02X) = %q, want %q", tt.set, tt.id, got, tt.want)
		}
	}
}

func TestFormatStateLine_PressedButtons(t *testing.T) {
	s := RCState{Pause: true, FiveD: FiveD{Center: true}, FlightMode: FlightModeNormal}
	line := FormatStateLine(&s)

	for _, want := range []string{"PAUSE", "5D_C", "mode=Normal"} {
		if !strings.Contains(line, want) {
			t.Errorf("state line missing %q: %s", want, line)
		}
	}
	if strings.Contains(line, "HOME") {
		t.Errorf("state line shows unpressed button: %s", line)
	}
}

func TestFormatFrame_HexDump(t *testing.T) {
	frame := buildFuzzPushFrame(t, centredPayload())
	f, err := ParseFrame(frame)
	if err != nil {
		t.Fatal(err)
	}

	out := FormatFrame(f)
	if !strings.Contains(out, "RC_PUSH") {
		t.Errorf("frame summary missing command name: %s", out)
	}
	if !strings.Contains(out, "payload:") {
		t.Errorf("frame summary missing payload dump: %s", out)
	}
	if !strings.Contains(out, "RC/0 -> APP/0") {
		t.Errorf("frame summary missing routing: %s", out)
	}
}
