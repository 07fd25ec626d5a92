// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Yasha Space Labs

package duml

import "fmt"

// AnomalyType classifies snapshot anomalies.
type AnomalyType int

// Anomaly values
const (
	AnomalyStickRange AnomalyType = iota
	AnomalyWheelRange
	AnomalyUnknownMode
)

// ValidationError describes one anomaly found in a decoded snapshot.
// Anomalies are advisory: the decoder preserves raw readings rather than
// clamping, so corrupt input surfaces here instead of being hidden.
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateState checks a decoded snapshot for physically implausible
// values. Returns a slice of validation errors (empty if plausible).
func ValidateState(s *RCState) []ValidationError {
	errors := []ValidationError{}

	axes := []struct {
		name string
		v    int16
		typ  AnomalyType
	}{
		{"right stick H", s.StickRight.Horizontal, AnomalyStickRange},
		{"right stick V", s.StickRight.Vertical, AnomalyStickRange},
		{"left stick H", s.StickLeft.Horizontal, AnomalyStickRange},
		{"left stick V", s.StickLeft.Vertical, AnomalyStickRange},
		{"left wheel", s.LeftWheel, AnomalyWheelRange},
		{"right wheel", s.RightWheel, AnomalyWheelRange},
	}
	for _, a := range axes {
		if a.v < -StickMax || a.v > StickMax {
			errors = append(errors, ValidationError{
				Type:    a.typ,
				Message: fmt.Sprintf("%s out of range: %d (expected ±%d)", a.name, a.v, StickMax),
				Details: map[string]interface{}{"axis": a.name, "value": a.v, "max": StickMax},
			})
		}
	}

	if s.FlightMode == FlightModeUnknown {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownMode,
			Message: "flight mode switch reads an unknown position",
			Details: map[string]interface{}{"mode": uint8(s.FlightMode)},
		})
	}

	return errors
}
