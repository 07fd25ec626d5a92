// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"encoding/binary"
	"errors"
)

// ErrInvalidArgument is returned by the builder for a nil output buffer,
// insufficient output capacity, or a payload that would push the frame
// past MaxFrameLen.
var ErrInvalidArgument = errors.New("duml: invalid build argument")

// FrameConfig carries the caller-supplied fields of a frame to build.
// The zero value is a request with no ack, no encryption, from DeviceAny
// to DeviceAny.
type FrameConfig struct {
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

// BuildFrame serialises a complete DUML frame into out, computing both
// checksums, and returns the frame length in bytes. Total length is
// 11 + len(payload) + 2 and must fit both MaxFrameLen and len(out).
func BuildFrame(out []byte, cfg *FrameConfig) (int, error) {
	if out == nil || cfg == nil {
		return 0, ErrInvalidArgument
	}

	total := HeaderLen + len(cfg.Payload) + TrailerLen
	if total > MaxFrameLen || total > len(out) {
		return 0, ErrInvalidArgument
	}

	out[0] = SOF
	binary.LittleEndian.PutUint16(out[1:3], uint16(total)&0x03FF|ProtocolVersion<<10)
	out[3] = CRC8(out[0:3])

	out[4] = uint8(cfg.SenderType)&0x1F | (cfg.SenderIndex&0x07)<<5
	out[5] = uint8(cfg.ReceiverType)&0x1F | (cfg.ReceiverIndex&0x07)<<5
	binary.LittleEndian.PutUint16(out[6:8], cfg.Seq)
	out[8] = (uint8(cfg.PackType)&1)<<7 | (uint8(cfg.Ack)&0x03)<<5 | cfg.Encryption&0x07
	out[9] = cfg.CmdSet
	out[10] = cfg.CmdID

	copy(out[HeaderLen:], cfg.Payload)
	binary.LittleEndian.PutUint16(out[total-TrailerLen:total], CRC16(out[:total-TrailerLen]))

	return total, nil
}

// BuildEnableCommand builds the push-enable command (cmd set 0x06, id
// 0x24, payload 0x01) that starts RC status streaming. Routed workstation
// to remote controller, request with after-exec ack.
func BuildEnableCommand(out []byte, seq uint16) (int, error) {
	return BuildFrame(out, &FrameConfig{
		SenderType:   DeviceWorkstation,
		ReceiverType: DeviceRC,
		Seq:          seq,
		PackType:     PackRequest,
		Ack:          AckAfterExec,
		CmdSet:       CmdSetRC,
		CmdID:        CmdIDEnablePush,
		Payload:      []byte{0x01},
	})
}

// BuildChannelRequest builds the channel-data poll request (cmd set 0x06,
// id 0x01, empty payload), used as a fallback when no push data arrives.
func BuildChannelRequest(out []byte, seq uint16) (int, error) {
	return BuildFrame(out, &FrameConfig{
		SenderType:   DeviceWorkstation,
		ReceiverType: DeviceRC,
		Seq:          seq,
		PackType:     PackRequest,
		Ack:          AckNone,
		CmdSet:       CmdSetRC,
		CmdID:        CmdIDChannelRequest,
	})
}
