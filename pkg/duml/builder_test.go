// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// ============================================================
// Frame layout
// ============================================================

func TestBuildFrame_Minimal(t *testing.T) {
	var buf [64]byte
	n, err := BuildFrame(buf[:], &FrameConfig{
		SenderType:   DeviceWorkstation,
		ReceiverType: DeviceRC,
		Seq:          0x0001,
		CmdSet:       0x06,
		CmdID:        0x01,
	})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if n != MinFrameLen {
		t.Fatalf("empty-payload frame should be %d bytes, got %d", MinFrameLen, n)
	}

	if buf[0] != SOF {
		t.Errorf("byte 0 should be SOF, got 0x%02X", buf[0])
	}

	lenVer := binary.LittleEndian.Uint16(buf[1:3])
	if got := lenVer & 0x03FF; got != uint16(n) {
		t.Errorf("length field = %d, want %d", got, n)
	}
	if got := lenVer >> 10; got != ProtocolVersion {
		t.Errorf("version field = %d, want %d", got, ProtocolVersion)
	}

	if buf[3] != CRC8(buf[0:3]) {
		t.Errorf("header checksum mismatch")
	}

	if buf[4]&0x1F != uint8(DeviceWorkstation) || buf[4]>>5 != 0 {
		t.Errorf("sender byte = 0x%02X", buf[4])
	}
	if buf[5]&0x1F != uint8(DeviceRC) || buf[5]>>5 != 0 {
		t.Errorf("receiver byte = 0x%02X", buf[5])
	}
	if buf[6] != 0x01 || buf[7] != 0x00 {
		t.Errorf("sequence bytes = %02X %02X", buf[6], buf[7])
	}
	if buf[8] != 0 {
		t.Errorf("type byte = 0x%02X, want 0", buf[8])
	}
	if buf[9] != 0x06 || buf[10] != 0x01 {
		t.Errorf("cmd bytes = %02X %02X", buf[9], buf[10])
	}

	want := CRC16(buf[:n-TrailerLen])
	if got := binary.LittleEndian.Uint16(buf[n-TrailerLen : n]); got != want {
		t.Errorf("frame checksum = 0x%04X, want 0x%04X", got, want)
	}
}

func TestBuildFrame_WithPayload(t *testing.T) {
	var buf [64]byte
	payload := []byte{0xAA, 0xBB, 0xCC}
	n, err := BuildFrame(buf[:], &FrameConfig{
		SenderType:    DeviceApp,
		SenderIndex:   1,
		ReceiverType:  DeviceFlightController,
		ReceiverIndex: 2,
		Seq:           0x1234,
		PackType:      PackResponse,
		Ack:           AckAfterExec,
		CmdSet:        0x01,
		CmdID:         0x02,
		Payload:       payload,
	})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if n != 16 {
		t.Fatalf("frame length = %d, want 16", n)
	}

	if !bytes.Equal(buf[HeaderLen:HeaderLen+3], payload) {
		t.Errorf("payload not copied verbatim: % X", buf[HeaderLen:HeaderLen+3])
	}
	if buf[4]&0x1F != uint8(DeviceApp) || buf[4]>>5 != 1 {
		t.Errorf("sender byte = 0x%02X", buf[4])
	}
	if buf[5]&0x1F != uint8(DeviceFlightController) || buf[5]>>5 != 2 {
		t.Errorf("receiver byte = 0x%02X", buf[5])
	}
	if buf[6] != 0x34 || buf[7] != 0x12 {
		t.Errorf("sequence bytes = %02X %02X", buf[6], buf[7])
	}
	if buf[8] != 1<<7|2<<5 {
		t.Errorf("type byte = 0x%02X, want 0x%02X", buf[8], 1<<7|2<<5)
	}
}

func TestBuildFrame_FieldMasking(t *testing.T) {
	// Out-of-range routing and type inputs are masked to their field
	// widths, never allowed to bleed into neighbouring bits.
	var buf [64]byte
	_, err := BuildFrame(buf[:], &FrameConfig{
		SenderType:    DeviceType(0xFF),
		SenderIndex:   0xFF,
		ReceiverType:  DeviceType(0xFF),
		ReceiverIndex: 0xFF,
		Encryption:    0xFF,
		Ack:           AckType(0xFF),
		PackType:      PackType(0xFF),
	})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if buf[4] != 0xFF || buf[5] != 0xFF {
		t.Errorf("routing bytes = %02X %02X", buf[4], buf[5])
	}
	if buf[8] != 0xE7 { // pack(1)<<7 | ack(3)<<5 | enc(7)
		t.Errorf("type byte = 0x%02X, want 0xE7", buf[8])
	}
}

// ============================================================
// Bounds
// ============================================================

func TestBuildFrame_Bounds(t *testing.T) {
	big := make([]byte, 2048)

	tests := []struct {
		name    string
		out     []byte
		payload []byte
		wantErr bool
	}{
		{"nil output", nil, nil, true},
		{"output too small", make([]byte, 5), nil, true},
		{"exact output", make([]byte, MinFrameLen), nil, false},
		{"one byte short", make([]byte, MinFrameLen-1), nil, true},
		{"max payload", big, make([]byte, MaxFrameLen-MinFrameLen), false},
		{"payload overflow", big, make([]byte, MaxFrameLen-MinFrameLen+1), true},
		{"huge payload", big, make([]byte, 1500), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := BuildFrame(tt.out, &FrameConfig{
				SenderType:   DeviceWorkstation,
				ReceiverType: DeviceRC,
				CmdSet:       0x06,
				CmdID:        0x01,
				Payload:      tt.payload,
			})
			if tt.wantErr {
				if err != ErrInvalidArgument {
					t.Errorf("expected ErrInvalidArgument, got n=%d err=%v", n, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if n != HeaderLen+len(tt.payload)+TrailerLen {
					t.Errorf("length = %d", n)
				}
			}
		})
	}
}

func TestBuildFrame_NilConfig(t *testing.T) {
	var buf [64]byte
	if _, err := BuildFrame(buf[:], nil); err != ErrInvalidArgument {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestBuildFrame_MaxPayloadRoundTrip(t *testing.T) {
	payload := make([]byte, MaxFrameLen-MinFrameLen)
	for i := range payload {
		payload[i] = byte(i)
	}
	buf := make([]byte, MaxFrameLen)
	n, err := BuildFrame(buf, &FrameConfig{CmdSet: 0x02, CmdID: 0x03, Payload: payload})
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if n != MaxFrameLen {
		t.Fatalf("frame length = %d, want %d", n, MaxFrameLen)
	}

	f, err := ParseFrame(buf[:n])
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Error("payload mismatch after parse")
	}
}

// ============================================================
// Helper commands
// ============================================================

func TestBuildEnableCommand(t *testing.T) {
	var buf [64]byte
	n, err := BuildEnableCommand(buf[:], 42)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if n != MinFrameLen+1 {
		t.Fatalf("enable command should be %d bytes, got %d", MinFrameLen+1, n)
	}

	if buf[9] != CmdSetRC || buf[10] != CmdIDEnablePush {
		t.Errorf("cmd bytes = %02X %02X", buf[9], buf[10])
	}
	if buf[HeaderLen] != 0x01 {
		t.Errorf("payload = 0x%02X, want 0x01", buf[HeaderLen])
	}
	if buf[4]&0x1F != uint8(DeviceWorkstation) || buf[5]&0x1F != uint8(DeviceRC) {
		t.Errorf("routing bytes = %02X %02X", buf[4], buf[5])
	}
	if buf[8] != uint8(AckAfterExec)<<5 {
		t.Errorf("type byte = 0x%02X", buf[8])
	}
	if buf[6] != 42 || buf[7] != 0 {
		t.Errorf("sequence bytes = %02X %02X", buf[6], buf[7])
	}
}

func TestBuildChannelRequest(t *testing.T) {
	var buf [64]byte
	n, err := BuildChannelRequest(buf[:], 7)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	if n != MinFrameLen {
		t.Fatalf("channel request should be %d bytes, got %d", MinFrameLen, n)
	}
	if buf[9] != CmdSetRC || buf[10] != CmdIDChannelRequest {
		t.Errorf("cmd bytes = %02X %02X", buf[9], buf[10])
	}
	if buf[4]&0x1F != uint8(DeviceWorkstation) || buf[5]&0x1F != uint8(DeviceRC) {
		t.Errorf("routing bytes = %02X %02X", buf[4], buf[5])
	}
}

// Feeding builder output back through the parser must never fire the
// push callback for non-push ids, even though both checksums pass.
func TestBuild_NonPushRoundTripNoCallback(t *testing.T) {
	var buf [64]byte
	n, err := BuildEnableCommand(buf[:], 100)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	p := NewParser(func(*RCState, any) { calls++ }, nil)
	if got := p.Feed(buf[:n]); got != 0 {
		t.Errorf("Feed returned %d, want 0", got)
	}
	if calls != 0 {
		t.Errorf("callback fired %d times for a non-push frame", calls)
	}
	if p.Stats().FramesValid != 1 {
		t.Errorf("frame should still count as valid, stats: %+v", p.Stats())
	}
}
