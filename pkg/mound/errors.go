// Copyright 2025 Certen Protocol

package mound

import "errors"

var (
	// ErrConsensusMismatch is returned when issuance parameters name a
	// different consensus layer than the mound's.
	ErrConsensusMismatch = errors.New("mound: consensus mismatch")

	// ErrTestnetMismatch is returned when issuance parameters' testnet
	// flag does not match the mound's.
	ErrTestnetMismatch = errors.New("mound: testnet/mainnet mismatch")

	// ErrUnknownCodex is returned when issuance names a codex id the
	// mound has no schema registered for.
	ErrUnknownCodex = errors.New("mound: unknown codex id")

	// ErrUnknownContract is returned when consign/consume/select is
	// asked about a contract id the mound has no record of.
	ErrUnknownContract = errors.New("mound: unknown contract id")

	// ErrUnrecognizedMagic is returned when a consumed stream's leading
	// bytes do not match the consignment magic constant.
	ErrUnrecognizedMagic = errors.New("mound: unrecognized consignment magic bytes")

	// ErrExcavate wraps a failure loading persisted schemata/contracts.
	ErrExcavate = errors.New("mound: failed to load persisted state")
)
