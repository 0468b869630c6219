// Copyright 2025 Certen Protocol

package statecalc

import "errors"

var (
	// ErrInsufficientState names a request for more value than the
	// registered inputs carry. CalcOutput does not return it: it reports
	// the shortfall through its insufficient result.
	ErrInsufficientState = errors.New("statecalc: insufficient registered input state")

	// ErrNoChange names the absence of registered input for a change
	// calculation. CalcChange does not return it: it reports the absence
	// by returning (nil, false).
	ErrNoChange = errors.New("statecalc: no input registered for change calculation")

	// ErrUnknownAssignment is returned when an assignment type has no
	// arithmetic rule registered in the calculator's ABI.
	ErrUnknownAssignment = errors.New("statecalc: unknown assignment type")
)
