// Copyright 2025 Certen Protocol

package operation

import (
	"encoding/json"
	"fmt"

	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// Encode serializes an operation to its canonical, content-addressable
// form. encoding/json is used rather than a bespoke binary grammar: Go's
// encoder already sorts map keys (including the integer-keyed TypeId
// maps used throughout this package) before emitting them, which is the
// same determinism property the strict-encoding format exists to give
// primitive fields — see DESIGN.md for why this was judged sufficient
// rather than writing a second hand-rolled codec for these types.
func Encode(op Operation) ([]byte, error) {
	b, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("operation: encode: %w", err)
	}
	return b, nil
}

// DecodeGenesis reconstructs a Genesis from its canonical form.
func DecodeGenesis(b []byte) (Genesis, error) {
	var g Genesis
	if err := json.Unmarshal(b, &g); err != nil {
		return Genesis{}, fmt.Errorf("operation: decode genesis: %w", err)
	}
	return g, nil
}

// DecodeTransition reconstructs a Transition from its canonical form.
func DecodeTransition(b []byte) (Transition, error) {
	var t Transition
	if err := json.Unmarshal(b, &t); err != nil {
		return Transition{}, fmt.Errorf("operation: decode transition: %w", err)
	}
	return t, nil
}

// rawBytes lets pre-serialized bytes be fed through strictypes.HashId
// without re-deriving the hash logic, mirroring pkg/seal's identical
// helper.
type rawBytes []byte

func (r rawBytes) StrictEncode(w *strictypes.Writer) error { return w.WriteBytes(r) }

// OpidOf computes an operation's content-addressed id from its canonical
// encoding.
func OpidOf(op Operation) (strictypes.Opid, error) {
	b, err := Encode(op)
	if err != nil {
		return strictypes.Opid{}, err
	}
	return strictypes.HashId(rawBytes(b))
}
