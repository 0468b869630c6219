// Copyright 2025 Certen Protocol

// Package operation defines the contract-level data model shared by
// the builder, stockpile and mound packages: genesis and transition
// operations, their metadata/global/owned state, and the assembled
// contract container (Articles).
package operation

import (
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// TypeId mirrors schema.TypeId without importing the schema package,
// keeping this package free of a schema->operation->schema cycle.
type TypeId = uint16

// Metadata is an operation's immutable, type-indexed byte blobs.
type Metadata map[TypeId][]byte

// GlobalState is an operation's type-indexed, ordered append to a
// contract's global state log.
type GlobalState map[TypeId][][]byte

// AssignmentState is a single piece of owned state plus the seal that
// must be closed to spend it. Attach optionally names a client-side
// attachment (media, documents) associated with this assignment.
type AssignmentState struct {
	Seal   seal.EitherSeal
	Data   []byte
	Attach *strictypes.AttachId
}

// Assignments is an operation's type-indexed collection of owned-state
// assignments it creates.
type Assignments map[TypeId][]AssignmentState

// Opout references one assignment slot produced by a specific
// operation: the identifier a later transition's Input points at.
type Opout struct {
	Opid strictypes.Opid
	Type TypeId
	No   uint16
}

// Input references a prior operation's output being consumed.
type Input struct {
	Opout Opout
}

// Valencies is the set of valency types an operation exposes for a
// later extension to attach to.
type Valencies map[TypeId]struct{}

// Genesis is the root operation of a contract: it has no inputs and
// fixes the contract's schema, interface, and initial state.
type Genesis struct {
	SchemaId  strictypes.CodexId
	Issuer    string // supplemented from original_source/builder.rs's `issuer: Identity`
	Testnet   bool
	Timestamp int64
	Metadata  Metadata
	Globals   GlobalState
	Assigns   Assignments
	Valencies Valencies
}

// Transition consumes prior outputs (Inputs) and produces new ones. Per
// the original implementation, Metadata is always empty on a completed
// transition even though the builder accumulates it during assembly;
// see DESIGN.md's "Open questions" section for why this is preserved.
type Transition struct {
	ContractId strictypes.ContractId
	TypeId     TypeId
	Nonce      uint64
	Metadata   Metadata
	Globals    GlobalState
	Inputs     []Input
	Assigns    Assignments
	Valencies  Valencies
}

// Operation is implemented by Genesis and Transition, giving the
// stockpile and mound packages a uniform handle on either.
type Operation interface {
	// The content-addressed id of an Operation is computed by OpidOf,
	// not by a method on the interface.
	OpMetadata() Metadata
	OpGlobals() GlobalState
	OpAssigns() Assignments
}

func (g *Genesis) OpMetadata() Metadata     { return g.Metadata }
func (g *Genesis) OpGlobals() GlobalState   { return g.Globals }
func (g *Genesis) OpAssigns() Assignments   { return g.Assigns }

func (t *Transition) OpMetadata() Metadata   { return t.Metadata }
func (t *Transition) OpGlobals() GlobalState { return t.Globals }
func (t *Transition) OpAssigns() Assignments { return t.Assigns }

// ContainerVersion enumerates the contract container wire versions,
// supplemented from original_source/stockpile.rs's explicit version
// enum (the distilled spec only mentions "version=V2" in passing).
type ContainerVersion uint16

const (
	ContainerV1 ContainerVersion = 1
	ContainerV2 ContainerVersion = 2
)

// Articles is the assembled, schema-validated contract container: the
// genesis operation plus the schema/interface ids it was issued under.
type Articles struct {
	Version  ContainerVersion
	Genesis  Genesis
	SchemaId strictypes.CodexId
	IfaceId  strictypes.SemId
}

// ContractInfo summarizes a contract for enumeration by a Mound,
// supplemented from original_source/mound.rs's contracts_info().
type ContractInfo struct {
	ContractId strictypes.ContractId
	SchemaId   strictypes.CodexId
	Testnet    bool
	Issuer     string
}
