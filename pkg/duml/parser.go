// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import "encoding/binary"

// PushHandler is invoked synchronously from Feed for every accepted push
// frame, in frame-completion order. The snapshot pointer is valid only
// for the duration of the call; consumers that retain it must copy the
// value. userdata is the opaque value given to NewParser.
type PushHandler func(state *RCState, userdata any)

// FrameHandler observes every checksum-valid frame of any class, before
// push dispatch. The frame (including its payload, which aliases parser
// scratch memory) is valid only for the duration of the call.
type FrameHandler func(frame *Frame)

// ParserStats are cumulative counters for one parser instance. The
// struct is a plain value; Stats returns a copy.
type ParserStats struct {
	BytesIn           uint64
	NoiseBytes        uint64 // non-SOF bytes dropped while seeking
	HeaderRejects     uint64 // SOF candidates dropped for bad CRC8 or length
	FrameCRCErrors    uint64 // full candidates dropped for bad CRC16
	FramesValid       uint64 // frames passing both checksums, any class
	PushFrames        uint64 // push frames delivered to the handler
	ShortPushPayloads uint64 // push frames dropped for payload < 17
	RingOverflows     uint64 // oldest bytes overwritten on push
}

// Parser reassembles DUML frames from an arbitrarily chunked byte stream
// and delivers decoded controller state for each valid push frame. All
// malformed input is dropped silently; the byte source is expected to be
// lossy and noisy.
//
// A parser is owned by a single logical producer; it performs no locking.
// Methods on a nil *Parser are no-ops.
type Parser struct {
	handler      PushHandler
	userdata     any
	frameHandler FrameHandler

	ring     ringBuffer
	state    int
	frameLen int // expected frame length once the header is validated

	scratch [MaxFrameLen]byte
	stats   ParserStats
}

// NewParser creates a parser that forwards userdata to handler on every
// accepted push frame. Returns nil when handler is nil.
func NewParser(handler PushHandler, userdata any) *Parser {
	if handler == nil {
		return nil
	}
	return &Parser{
		handler:  handler,
		userdata: userdata,
		state:    stateSeekStart,
	}
}

// SetFrameHandler installs an observer for every checksum-valid frame,
// regardless of class. Pass nil to remove it. The push handler contract
// is unaffected.
func (p *Parser) SetFrameHandler(fn FrameHandler) {
	if p == nil {
		return
	}
	p.frameHandler = fn
}

// Reset discards all buffered bytes and returns to scanning for a frame
// start. Call it on transport reconnect.
func (p *Parser) Reset() {
	if p == nil {
		return
	}
	p.ring.reset()
	p.state = stateSeekStart
	p.frameLen = 0
}

// Stats returns a copy of the parser's cumulative counters.
func (p *Parser) Stats() ParserStats {
	if p == nil {
		return ParserStats{}
	}
	return p.stats
}

// Feed pushes raw bytes from the transport into the parser and returns
// the number of push frames delivered to the handler during this call.
// The handler runs synchronously on the calling goroutine.
func (p *Parser) Feed(data []byte) int {
	if p == nil || len(data) == 0 {
		return 0
	}

	delivered := 0
	for _, b := range data {
		if p.ring.push(b) {
			p.stats.RingOverflows++
		}
		p.stats.BytesIn++

		for {
			n, progress := p.tryDecodeFrame()
			delivered += n
			if !progress {
				break
			}
		}
	}
	return delivered
}

// tryDecodeFrame attempts to consume one frame from the ring. It returns
// the number of push frames delivered (0 or 1) and whether a
// checksum-valid frame was consumed; (0, false) means more input is needed.
//
// Every negative decision in the scan state costs exactly one byte. A
// frame with a valid header but a bad trailing checksum costs its whole
// declared length: the header checksum is trusted enough to commit.
func (p *Parser) tryDecodeFrame() (int, bool) {
	for p.ring.count > 0 {
		if p.state == stateSeekStart {
			if p.ring.peek(0) != SOF {
				p.ring.consume(1)
				p.stats.NoiseBytes++
				continue
			}
			// Need SOF + LenVer + CRC8 to judge the header.
			if p.ring.count < 4 {
				return 0, false
			}

			var hdr [3]byte
			p.ring.copyTo(hdr[:], 3)
			if CRC8(hdr[:]) != p.ring.peek(3) {
				// A stray 0x55 inside noise or a previous bogus length.
				p.ring.consume(1)
				p.stats.HeaderRejects++
				continue
			}

			frameLen := int(binary.LittleEndian.Uint16(hdr[1:3]) & 0x03FF)
			if frameLen < MinFrameLen || frameLen > MaxFrameLen {
				p.ring.consume(1)
				p.stats.HeaderRejects++
				continue
			}

			p.frameLen = frameLen
			p.state = stateAccumulateFrame
		}

		if p.ring.count < p.frameLen {
			return 0, false
		}

		frame := p.scratch[:p.frameLen]
		p.ring.copyTo(frame, p.frameLen)
		p.ring.consume(p.frameLen)
		p.state = stateSeekStart

		want := binary.LittleEndian.Uint16(frame[p.frameLen-TrailerLen:])
		if CRC16(frame[:p.frameLen-TrailerLen]) != want {
			p.stats.FrameCRCErrors++
			continue
		}
		p.stats.FramesValid++

		if p.frameHandler != nil {
			if f, err := ParseFrame(frame); err == nil {
				p.frameHandler(f)
			}
		}

		if decode := lookupDecoder(frame[9], frame[10]); decode != nil {
			state, err := decode(frame[HeaderLen : p.frameLen-TrailerLen])
			if err == nil {
				p.stats.PushFrames++
				p.handler(&state, p.userdata)
				return 1, true
			}
			p.stats.ShortPushPayloads++
		}

		return 0, true
	}
	return 0, false
}
