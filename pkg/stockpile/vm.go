// Copyright 2025 Certen Protocol

package stockpile

import (
	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// VM evaluates a codex method's bytecode against a transition and the
// prior state it consumes, the external collaborator spec.md §4.4
// describes as "script evaluation": the schema only carries the
// opaque bytecode and method table (schema.Codex), and leaves
// interpreting it to this interface.
type VM interface {
	// Exec runs the method a schema.TransitionSchema names for t's
	// type, over codex and the prior assignment states t's inputs
	// reference. A non-nil error fails validation of the whole
	// transition.
	Exec(codex schema.Codex, method schema.MethodName, t operation.Transition, prior []operation.AssignmentState) error
}

// NopVM accepts every method call unconditionally. It is the default
// VM a Stockpile runs with when no bytecode interpreter is wired in,
// matching spec.md §9's note that the VM itself ("AluVM") is an
// external, swappable collaborator out of this module's scope — schema
// cardinality and witness closure are still enforced regardless of
// which VM is bound.
type NopVM struct{}

func (NopVM) Exec(schema.Codex, schema.MethodName, operation.Transition, []operation.AssignmentState) error {
	return nil
}

// SchemaResolver looks up the schema a stored contract was issued
// under, by codex id. A Mound's RegisterSchema table is the typical
// backing store.
type SchemaResolver func(id strictypes.CodexId) (*schema.Schema, error)
