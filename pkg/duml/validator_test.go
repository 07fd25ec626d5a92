// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import (
	"testing"
	"time"
)

func TestValidateState_Plausible(t *testing.T) {
	s := RCState{
		StickRight: Stick{Horizontal: 660, Vertical: -660},
		LeftWheel:  330,
		FlightMode: FlightModeNormal,
	}
	if errs := ValidateState(&s); len(errs) != 0 {
		t.Errorf("plausible state flagged: %v", errs)
	}
}

func TestValidateState_OutOfRange(t *testing.T) {
	s := RCState{
		StickLeft:  Stick{Horizontal: -1024},
		RightWheel: 1023,
	}
	errs := ValidateState(&s)
	if len(errs) != 2 {
		t.Fatalf("expected 2 anomalies, got %d: %v", len(errs), errs)
	}
	if errs[0].Type != AnomalyStickRange {
		t.Errorf("first anomaly type = %d", errs[0].Type)
	}
	if errs[1].Type != AnomalyWheelRange {
		t.Errorf("second anomaly type = %d", errs[1].Type)
	}
	if errs[0].Error() == "" {
		t.Error("anomaly should carry a message")
	}
}

func TestValidateState_UnknownMode(t *testing.T) {
	s := RCState{FlightMode: FlightModeUnknown}
	errs := ValidateState(&s)
	if len(errs) != 1 || errs[0].Type != AnomalyUnknownMode {
		t.Errorf("expected a single unknown-mode anomaly, got %v", errs)
	}
}

func TestStatistics_Rates(t *testing.T) {
	st := NewStatistics()
	st.Observe(ParserStats{FramesValid: 10, PushFrames: 5, BytesIn: 300})
	time.Sleep(10 * time.Millisecond)
	st.CalculateRates()

	// Rates are positive after observing counters against an earlier
	// zero snapshot; exact values depend on wall time.
	if st.PushRate <= 0 || st.FrameRate <= 0 || st.ByteRate <= 0 {
		t.Errorf("rates not computed: %+v", st)
	}

	if st.Dropped() != 0 {
		t.Errorf("Dropped() = %d", st.Dropped())
	}
	st.Observe(ParserStats{HeaderRejects: 2, FrameCRCErrors: 3})
	if st.Dropped() != 5 {
		t.Errorf("Dropped() = %d, want 5", st.Dropped())
	}

	if st.Summary() == "" {
		t.Error("summary should not be empty")
	}
	if st.Uptime() < 0 {
		t.Error("uptime should not be negative")
	}
}
