// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

// Package duml implements the DUML wire protocol used by DJI RM510-family
// remote controllers: a streaming frame parser with CRC resynchronisation,
// a frame builder, and a bit-level decoder for the RC button/stick status
// push payload.
//
// The field layout of the push payload was recovered by reverse engineering
// libdjisdk_jni.so (DJI Mobile SDK V5 5.17.0).
package duml

// Frame framing constants
const (
	SOF = 0x55 // start-of-frame byte

	MinFrameLen = 13   // SOF(1) + LenVer(2) + CRC8(1) + Route(2) + Seq(2) + Type(1) + Cmd(2) + CRC16(2)
	MaxFrameLen = 1400

	HeaderLen  = 11 // bytes before the payload
	TrailerLen = 2  // trailing CRC16

	ProtocolVersion = 1 // 6-bit version field; produced, never checked on ingress
)

// RC command set and ids
const (
	CmdSetRC            = 0x06
	CmdIDPushRC         = 0x05 // rc_button_physical_status_push
	CmdIDChannelRequest = 0x01
	CmdIDEnablePush     = 0x24

	PushPayloadLen = 17
)

// StickCenter is subtracted from raw 16-bit analog readings to produce
// zero-centred signed values.
const StickCenter = 0x0400

// StickMax is the expected full-deflection magnitude of sticks and wheels.
// Raw readings may exceed it when the input is corrupt; the decoder
// preserves the reading and the validator flags it.
const StickMax = 660

// DeviceType identifies a DUML endpoint, packed into the low 5 bits of the
// routing bytes.
type DeviceType uint8

// Device type values
const (
	DeviceAny              DeviceType = 0
	DeviceCamera           DeviceType = 1
	DeviceApp              DeviceType = 2
	DeviceFlightController DeviceType = 3
	DeviceGimbal           DeviceType = 4
	DeviceRC               DeviceType = 6
	DeviceWorkstation      DeviceType = 10
)

// PackType distinguishes requests from responses (bit 7 of the type byte).
type PackType uint8

// Pack type values
const (
	PackRequest  PackType = 0
	PackResponse PackType = 1
)

// AckType selects the acknowledgement policy (bits 5-6 of the type byte).
type AckType uint8

// Ack type values
const (
	AckNone      AckType = 0
	AckAfterExec AckType = 2
)

// FlightMode is the three-position latching mode switch. Values outside
// 0-2 decode to FlightModeUnknown.
type FlightMode uint8

// Flight mode switch positions
const (
	FlightModeSport   FlightMode = 0
	FlightModeNormal  FlightMode = 1
	FlightModeTripod  FlightMode = 2 // or CineSmooth depending on aircraft
	FlightModeUnknown FlightMode = 3
)

// DJI USB identifiers for the byte-source layer
const (
	USBVendorID        = 0x2CA3
	USBProductIDInit   = 0x0040
	USBProductIDActive = 0x1020
)

// Parser scanner states (internal)
const (
	stateSeekStart = iota
	stateAccumulateFrame
)
