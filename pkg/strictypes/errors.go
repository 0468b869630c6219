// Copyright 2025 Certen Protocol

package strictypes

import "errors"

var (
	// ErrConfinement is returned when a collection's length falls outside
	// the bounds declared for its confinement class (tiny/small/ordinary).
	ErrConfinement = errors.New("strictypes: collection length violates confinement bounds")

	// ErrUnknownType is returned when a SemId has no registered descriptor.
	ErrUnknownType = errors.New("strictypes: unknown semantic type id")

	// ErrTypify is returned when a raw value cannot be coerced into the
	// shape its declared semantic type requires.
	ErrTypify = errors.New("strictypes: value does not match semantic type")

	// ErrStrictEncode is returned when a value cannot be encoded in the
	// canonical deterministic binary form.
	ErrStrictEncode = errors.New("strictypes: strict encoding failed")

	// ErrStrictDecode is returned when a byte stream does not parse as a
	// valid strict-encoded value.
	ErrStrictDecode = errors.New("strictypes: strict decoding failed")

	// ErrTruncated is returned when a decode operation runs out of input
	// before a value is fully read.
	ErrTruncated = errors.New("strictypes: truncated input")
)
