// Copyright 2025 Certen Protocol

package stockpile

import "errors"

var (
	// ErrSchemaMismatch is returned when Issue is given no schema, or
	// when ApplyTransition runs on a Stockpile with no schema bound.
	ErrSchemaMismatch = errors.New("stockpile: codex id mismatch")

	// ErrConsensusMismatch is returned when CreateParams' consensus
	// layer does not match the Stockpile's.
	ErrConsensusMismatch = errors.New("stockpile: consensus layer mismatch")

	// ErrTestnetMismatch is returned when CreateParams' testnet flag
	// does not match the Stockpile's.
	ErrTestnetMismatch = errors.New("stockpile: testnet/mainnet flag mismatch")

	// ErrUnknownContract is returned when an operation is requested for
	// a contract id the Stockpile has no record of.
	ErrUnknownContract = errors.New("stockpile: unknown contract id")

	// ErrUnknownSeal is returned when Seal() is asked for an AuthToken
	// with no recorded assignment.
	ErrUnknownSeal = errors.New("stockpile: unknown seal")

	// ErrIo wraps an underlying KV store failure.
	ErrIo = errors.New("stockpile: storage i/o error")

	// ErrDecode is returned when consuming a consignment stream
	// encounters malformed data. Per spec, this replaces the original
	// implementation's behavior of panicking mid-stream.
	ErrDecode = errors.New("stockpile: malformed consignment stream")

	// ErrMerge is returned when merging a consumed contract's articles
	// into the existing stock fails (e.g. conflicting genesis).
	ErrMerge = errors.New("stockpile: articles merge conflict")

	// ErrVerification is returned when a consumed operation's witness
	// fails to verify.
	ErrVerification = errors.New("stockpile: witness verification failed")

	// ErrUnrecognizedMagic is returned when a consignment stream's
	// leading bytes do not match the expected magic constant.
	ErrUnrecognizedMagic = errors.New("stockpile: unrecognized consignment magic bytes")
)
