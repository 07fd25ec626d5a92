// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"fmt"
	"time"
)

// Statistics tracks stream health over time on top of the parser's raw
// counters. It is driven by the UI layer: call Observe with the parser's
// latest counters, then CalculateRates on a periodic tick.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Latest counters observed from the parser
	Current ParserStats

	// Rates (calculated)
	FrameRate float64 // valid frames/sec since the previous tick
	PushRate  float64 // push frames/sec since the previous tick
	ByteRate  float64 // bytes/sec since the previous tick

	// Snapshot at the previous rate calculation
	prev     ParserStats
	prevTime time.Time
}

// NewStatistics creates a statistics tracker.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		prevTime:       now,
	}
}

// Observe records the parser's latest cumulative counters.
func (s *Statistics) Observe(stats ParserStats) {
	s.Current = stats
	s.LastUpdateTime = time.Now()
}

// CalculateRates updates the per-second rates from the counters observed
// since the previous call.
func (s *Statistics) CalculateRates() {
	now := time.Now()
	elapsed := now.Sub(s.prevTime).Seconds()
	if elapsed <= 0 {
		return
	}

	s.FrameRate = float64(s.Current.FramesValid-s.prev.FramesValid) / elapsed
	s.PushRate = float64(s.Current.PushFrames-s.prev.PushFrames) / elapsed
	s.ByteRate = float64(s.Current.BytesIn-s.prev.BytesIn) / elapsed

	s.prev = s.Current
	s.prevTime = now
}

// Dropped returns the total number of frame candidates rejected at the
// header (bad checksum or length) or by the frame checksum.
func (s *Statistics) Dropped() uint64 {
	return s.Current.HeaderRejects + s.Current.FrameCRCErrors
}

// Summary returns a one-line description of the stream state.
func (s *Statistics) Summary() string {
	return fmt.Sprintf("frames=%d push=%d dropped=%d noise=%dB overflow=%d %.1f push/s",
		s.Current.FramesValid, s.Current.PushFrames, s.Dropped(),
		s.Current.NoiseBytes, s.Current.RingOverflows, s.PushRate)
}

// Uptime returns the time since the tracker was created.
func (s *Statistics) Uptime() time.Duration {
	return time.Since(s.StartTime)
}
