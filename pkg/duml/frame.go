// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"encoding/binary"
	"fmt"
)

// Frame is the decoded header and payload of one DUML frame.
//
// Wire layout (little-endian words):
//
//	[0]     SOF (0x55)
//	[1-2]   length(10 bits) | version(6 bits)
//	[3]     CRC8 over bytes 0-2
//	[4]     sender type(5) | sender index(3)
//	[5]     receiver type(5) | receiver index(3)
//	[6-7]   sequence number
//	[8]     pack type(1) | ack(2) | encryption(3)
//	[9]     command set
//	[10]    command id
//	[11..]  payload
//	[-2,-1] CRC16 over all preceding bytes
type Frame struct {
	Length  int
	Version uint8

	SenderType    DeviceType
	SenderIndex   uint8
	ReceiverType  DeviceType
	ReceiverIndex uint8

	Seq        uint16
	PackType   PackType
	Ack        AckType
	Encryption uint8

	CmdSet uint8
	CmdID  uint8

	Payload []byte
}

// ParseFrame splits a complete frame buffer into a Frame. The buffer must
// be exactly one frame; both checksums are assumed to have been verified
// already (the parser does this before handing frames out). Payload
// aliases buf; callers that retain the frame must copy.
func ParseFrame(buf []byte) (*Frame, error) {
	if len(buf) < MinFrameLen {
		return nil, fmt.Errorf("duml: frame too short: %d bytes", len(buf))
	}
	if buf[0] != SOF {
		return nil, fmt.Errorf("duml: bad start-of-frame byte 0x%02X", buf[0])
	}

	lenVer := binary.LittleEndian.Uint16(buf[1:3])
	length := int(lenVer & 0x03FF)
	if length != len(buf) {
		return nil, fmt.Errorf("duml: length field %d does not match buffer %d", length, len(buf))
	}

	return &Frame{
		Length:        length,
		Version:       uint8(lenVer >> 10),
		SenderType:    DeviceType(buf[4] & 0x1F),
		SenderIndex:   buf[4] >> 5,
		ReceiverType:  DeviceType(buf[5] & 0x1F),
		ReceiverIndex: buf[5] >> 5,
		Seq:           binary.LittleEndian.Uint16(buf[6:8]),
		PackType:      PackType(buf[8] >> 7),
		Ack:           AckType((buf[8] >> 5) & 0x03),
		Encryption:    buf[8] & 0x07,
		CmdSet:        buf[9],
		CmdID:         buf[10],
		Payload:       buf[HeaderLen : length-TrailerLen],
	}, nil
}

// IsPush reports whether the frame carries an RC button/stick status push.
func (f *Frame) IsPush() bool {
	return f.CmdSet == CmdSetRC && f.CmdID == CmdIDPushRC
}
