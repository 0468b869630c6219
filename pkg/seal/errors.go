// Copyright 2025 Certen Protocol

package seal

import "errors"

var (
	// ErrNoWitness is returned when a seal's witness is requested
	// before it has been attested.
	ErrNoWitness = errors.New("seal: no witness recorded for seal")

	// ErrAlreadyClosed is returned when an attempt is made to close a
	// seal that already carries a published witness.
	ErrAlreadyClosed = errors.New("seal: seal already closed")

	// ErrInvalidSignature is returned when a client witness's BLS
	// signature does not verify against the expected message.
	ErrInvalidSignature = errors.New("seal: invalid client witness signature")
)
