// Copyright 2025 Certen Protocol

package schema

import "errors"

var (
	// ErrUnknownTransitionType is returned when a builder or validator
	// references a transition type the schema does not declare.
	ErrUnknownTransitionType = errors.New("schema: unknown transition type")

	// ErrUnknownGlobalType is returned when a global state type id is
	// not declared by the schema.
	ErrUnknownGlobalType = errors.New("schema: unknown global state type")

	// ErrUnknownOwnedType is returned when an owned state type id is not
	// declared by the schema.
	ErrUnknownOwnedType = errors.New("schema: unknown owned state type")

	// ErrUnknownValencyType is returned when a valency type id is not
	// declared by the schema.
	ErrUnknownValencyType = errors.New("schema: unknown valency type")

	// ErrSchemaMismatch is returned when an operation's declared schema
	// id does not match the schema being used to validate it.
	ErrSchemaMismatch = errors.New("schema: schema id mismatch")

	// ErrLoadFile is returned when a .issuer schema file cannot be
	// parsed.
	ErrLoadFile = errors.New("schema: failed to load schema file")
)
