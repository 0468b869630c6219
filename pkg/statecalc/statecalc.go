// Copyright 2025 Certen Protocol

// Package statecalc implements the conservation-of-value bookkeeping a
// TransitionBuilder uses while assembling owned-state assignments: it
// tracks what has been registered as spent input and lets the builder
// ask for a sufficient output split plus the leftover change, without
// itself interpreting the schema's validation script (that VM is an
// external collaborator).
package statecalc

import (
	"encoding/binary"
	"fmt"
)

// TypeId mirrors operation.TypeId without importing that package.
type TypeId = uint16

// AmountCodec decodes/encodes one assignment type's owned-state blob as
// a conserved quantity. Fungible asset schemas register a u64 amount
// codec; non-fungible or data-carrying types are simply never
// registered, and StateCalc treats them as not participating in
// conservation accounting.
type AmountCodec interface {
	Decode(raw []byte) (uint64, error)
	Encode(amount uint64) []byte
}

// U64Amount is the default AmountCodec: a big-endian uint64.
type U64Amount struct{}

func (U64Amount) Decode(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("statecalc: amount must be 8 bytes, got %d", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (U64Amount) Encode(amount uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, amount)
	return b
}

// StateCalc accumulates registered input amounts per assignment type
// and lets the builder draw sufficient output state from them, leaving
// the remainder available as change.
type StateCalc struct {
	abi        map[TypeId]AmountCodec
	registered map[TypeId]uint64
}

// New returns a StateCalc whose assignment types are interpreted per
// abi. Types absent from abi are treated as non-conserved (e.g. rights
// or data assignments): RegInput and CalcChange are no-ops for them,
// and CalcOutput fails with ErrUnknownAssignment.
func New(abi map[TypeId]AmountCodec) *StateCalc {
	return &StateCalc{abi: abi, registered: make(map[TypeId]uint64)}
}

// RegInput registers a consumed input's owned-state blob for t,
// accumulating its amount into the running total available for
// CalcOutput/CalcChange. A no-op for types not in the ABI.
func (c *StateCalc) RegInput(t TypeId, data []byte) error {
	codec, ok := c.abi[t]
	if !ok {
		return nil
	}
	amount, err := codec.Decode(data)
	if err != nil {
		return fmt.Errorf("statecalc: register input type %d: %w", t, err)
	}
	c.registered[t] += amount
	return nil
}

// CalcOutput draws as much of `requested` worth of state of type t as
// the registered inputs can cover. When have >= requested, sufficient
// carries the full requested amount and insufficient is nil. When have
// < requested, sufficient carries everything available (possibly nil
// if nothing is registered) and insufficient carries the shortfall, so
// the caller (TransitionBuilder.FulfillOwnedState) can retry the
// residual against another UTXO, per spec.md:146's
// `calc_output(type_id, &State) -> {sufficient, insufficient}`
// contract. Either way CalcOutput fully drains the registered amount
// for t; it only errors when t or requested itself is malformed.
func (c *StateCalc) CalcOutput(t TypeId, requested []byte) (sufficient []byte, insufficient []byte, err error) {
	codec, ok := c.abi[t]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownAssignment, t)
	}
	amount, err := codec.Decode(requested)
	if err != nil {
		return nil, nil, fmt.Errorf("statecalc: decode requested output type %d: %w", t, err)
	}
	have := c.registered[t]
	if have >= amount {
		c.registered[t] = have - amount
		return codec.Encode(amount), nil, nil
	}
	c.registered[t] = 0
	var suf []byte
	if have > 0 {
		suf = codec.Encode(have)
	}
	return suf, codec.Encode(amount - have), nil
}

// CalcChange returns the remaining registered amount of type t as an
// encoded owned-state blob, and whether any change remains at all.
func (c *StateCalc) CalcChange(t TypeId) ([]byte, bool) {
	codec, ok := c.abi[t]
	if !ok {
		return nil, false
	}
	remaining, ok := c.registered[t]
	if !ok || remaining == 0 {
		return nil, false
	}
	c.registered[t] = 0
	return codec.Encode(remaining), true
}

// Registered reports the currently available (not yet drawn) amount
// for t, for callers that want to inspect state without consuming it.
func (c *StateCalc) Registered(t TypeId) uint64 {
	return c.registered[t]
}
