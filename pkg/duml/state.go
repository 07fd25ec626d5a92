// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"encoding/binary"
	"errors"
)

// ErrShortPayload is returned when a push payload is nil or shorter than
// PushPayloadLen bytes.
var ErrShortPayload = errors.New("duml: push payload shorter than 17 bytes")

// FiveD is the 5-direction joystick button state. Multiple directions may
// be pressed simultaneously.
type FiveD struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	Center bool
}

// Stick is one analog stick axis pair, signed, centred at 0, full
// deflection approximately ±660.
type Stick struct {
	Horizontal int16
	Vertical   int16
}

// RCState is the complete controller state decoded from a single push
// payload. It is a plain value; callers may copy it freely.
type RCState struct {
	// Buttons (true = pressed)
	Pause   bool
	GoHome  bool
	Shutter bool
	Record  bool
	Custom1 bool
	Custom2 bool
	Custom3 bool

	// 5-direction joystick
	FiveD FiveD

	// Flight mode switch
	FlightMode FlightMode

	// Analog sticks (centred at 0)
	StickRight Stick // aileron (H) / elevator (V)
	StickLeft  Stick // rudder (H) / throttle (V)

	// Wheels/dials (centred at 0)
	LeftWheel       int16
	RightWheel      int16
	RightWheelDelta int8 // rotary-encoder tick delta, -31..+31
}

// centred maps a raw 16-bit analog reading to its zero-centred signed
// value. The subtraction wraps modulo 2^16; out-of-range raw readings are
// preserved, not clamped.
func centred(raw uint16) int16 {
	return int16(raw - StickCenter)
}

// ParsePushPayload decodes a 17-byte rc_button_physical_status_push
// payload. Extra trailing bytes are ignored. Reserved bits (byte 0 bits
// 0-3 and 7, byte 1 bits 1-2, byte 2 bits 5-7, byte 4 bits 0 and 7, and
// byte 3 entirely) never influence the result.
func ParsePushPayload(payload []byte) (RCState, error) {
	var s RCState
	if len(payload) < PushPayloadLen {
		return s, ErrShortPayload
	}

	b0 := payload[0]
	b1 := payload[1]
	b2 := payload[2]
	b4 := payload[4]

	// Buttons
	s.Pause = b0&(1<<4) != 0
	s.GoHome = b0&(1<<5) != 0
	s.Shutter = b0&(1<<6) != 0
	s.Record = b1&(1<<0) != 0
	s.Custom1 = b2&(1<<2) != 0
	s.Custom2 = b2&(1<<3) != 0
	s.Custom3 = b2&(1<<4) != 0

	// 5-direction joystick
	s.FiveD.Right = b1&(1<<3) != 0
	s.FiveD.Up = b1&(1<<4) != 0
	s.FiveD.Down = b1&(1<<5) != 0
	s.FiveD.Left = b1&(1<<6) != 0
	s.FiveD.Center = b1&(1<<7) != 0

	// Flight mode switch (2 bits)
	s.FlightMode = FlightMode(b2 & 0x03)

	// Analog sticks and wheels: uint16 LE, centred on 0x0400
	s.StickRight.Horizontal = centred(binary.LittleEndian.Uint16(payload[5:7]))
	s.StickRight.Vertical = centred(binary.LittleEndian.Uint16(payload[7:9]))
	s.StickLeft.Vertical = centred(binary.LittleEndian.Uint16(payload[9:11]))
	s.StickLeft.Horizontal = centred(binary.LittleEndian.Uint16(payload[11:13]))
	s.LeftWheel = centred(binary.LittleEndian.Uint16(payload[13:15]))
	s.RightWheel = centred(binary.LittleEndian.Uint16(payload[15:17]))

	// Right wheel delta: 5-bit magnitude with separate sign bit.
	// Magnitude 0 decodes to 0 regardless of the sign bit.
	mag := int8((b4 >> 1) & 0x1F)
	if b4&(1<<6) != 0 {
		s.RightWheelDelta = mag
	} else {
		s.RightWheelDelta = -mag
	}

	return s, nil
}

// EncodePushPayload is the inverse of ParsePushPayload: it packs a
// controller state into the 17-byte push payload layout. Analog values
// are re-biased by +0x0400 (wrapping modulo 2^16, mirroring the decoder);
// a delta outside ±31 is truncated to its low 5 magnitude bits.
func EncodePushPayload(s *RCState) [PushPayloadLen]byte {
	var out [PushPayloadLen]byte

	setBit := func(i int, bit uint, on bool) {
		if on {
			out[i] |= 1 << bit
		}
	}

	setBit(0, 4, s.Pause)
	setBit(0, 5, s.GoHome)
	setBit(0, 6, s.Shutter)

	setBit(1, 0, s.Record)
	setBit(1, 3, s.FiveD.Right)
	setBit(1, 4, s.FiveD.Up)
	setBit(1, 5, s.FiveD.Down)
	setBit(1, 6, s.FiveD.Left)
	setBit(1, 7, s.FiveD.Center)

	out[2] = uint8(s.FlightMode) & 0x03
	setBit(2, 2, s.Custom1)
	setBit(2, 3, s.Custom2)
	setBit(2, 4, s.Custom3)

	if d := s.RightWheelDelta; d > 0 {
		out[4] = uint8(d&0x1F)<<1 | 1<<6
	} else if d < 0 {
		out[4] = uint8((-d)&0x1F) << 1
	}

	binary.LittleEndian.PutUint16(out[5:7], uint16(s.StickRight.Horizontal)+StickCenter)
	binary.LittleEndian.PutUint16(out[7:9], uint16(s.StickRight.Vertical)+StickCenter)
	binary.LittleEndian.PutUint16(out[9:11], uint16(s.StickLeft.Vertical)+StickCenter)
	binary.LittleEndian.PutUint16(out[11:13], uint16(s.StickLeft.Horizontal)+StickCenter)
	binary.LittleEndian.PutUint16(out[13:15], uint16(s.LeftWheel)+StickCenter)
	binary.LittleEndian.PutUint16(out[15:17], uint16(s.RightWheel)+StickCenter)

	return out
}
