// Copyright 2025 Certen Protocol

package schema

import (
	"fmt"
	"time"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/seal"
)

// NamedState is one piece of state supplied to issuance, named by the
// interface rather than by the schema's numeric TypeId; ResolveParams
// resolves the name through the caller-supplied IfaceImpl-shaped
// resolver before Schema.Issue writes schema-level state.
type NamedState struct {
	Name string
	Data []byte
	Seal seal.EitherSeal // zero value for global/meta state, set for owned state
}

// CoreParams carries the issuance parameters independent of how state
// is named: the schema/codex identity and consensus layer.
type CoreParams struct {
	SchemaId  CodexId
	Consensus string // e.g. "bitcoin", "liquid" — checked against mound.Consensus by pkg/mound.Issue
	Testnet   bool
	Issuer    string
	Timestamp int64
}

// CreateParams is the full issuance request: CoreParams plus the named
// global and owned state to seed the contract with. This mirrors
// original_source/stockpile.rs's CreateParams<Seal>, translated by
// ResolveParams into an IssueParams the schema itself understands
// before Schema.Issue is called.
type CreateParams struct {
	Core   CoreParams
	Global []NamedState
	Owned  []NamedState
}

// IssueParams is CreateParams after names have been resolved to
// schema-local TypeIds — the shape Schema.Issue actually consumes.
type IssueParams struct {
	Core   CoreParams
	Global map[TypeId][][]byte
	Owned  map[TypeId][]operation.AssignmentState
}

// Resolver resolves a named state entry to the schema TypeId it should
// be written under; callers typically pass an iface.IfaceImpl's
// GlobalType/AssignmentType methods bound into closures.
type Resolver interface {
	GlobalType(name string) (TypeId, error)
	AssignmentType(name string) (TypeId, error)
}

// ResolveParams translates CreateParams into IssueParams using r.
func ResolveParams(p CreateParams, r Resolver) (IssueParams, error) {
	out := IssueParams{
		Core:   p.Core,
		Global: make(map[TypeId][][]byte),
		Owned:  make(map[TypeId][]operation.AssignmentState),
	}
	for _, ns := range p.Global {
		t, err := r.GlobalType(ns.Name)
		if err != nil {
			return IssueParams{}, err
		}
		out.Global[t] = append(out.Global[t], ns.Data)
	}
	for _, ns := range p.Owned {
		t, err := r.AssignmentType(ns.Name)
		if err != nil {
			return IssueParams{}, err
		}
		out.Owned[t] = append(out.Owned[t], operation.AssignmentState{Seal: ns.Seal, Data: ns.Data})
	}
	return out, nil
}

// Issue assembles a Genesis operation from already-resolved issuance
// parameters, validating every referenced type against the schema.
func (s *Schema) Issue(p IssueParams) (operation.Genesis, error) {
	if p.Core.SchemaId != s.Codex.CodexId {
		return operation.Genesis{}, fmt.Errorf("%w: params reference %s, schema is %s",
			ErrSchemaMismatch, p.Core.SchemaId, s.Codex.CodexId)
	}

	globals := make(operation.GlobalState, len(p.Global))
	for t, values := range p.Global {
		if err := s.CheckGlobalType(t); err != nil {
			return operation.Genesis{}, err
		}
		gts := s.GlobalTypes[t]
		if gts.MaxItems > 0 && len(values) > gts.MaxItems {
			return operation.Genesis{}, fmt.Errorf("schema: global type %d carries %d values, max %d",
				t, len(values), gts.MaxItems)
		}
		globals[t] = values
	}

	owned := make(operation.Assignments, len(p.Owned))
	for t, states := range p.Owned {
		if err := s.CheckOwnedType(t); err != nil {
			return operation.Genesis{}, err
		}
		owned[t] = states
	}

	ts := p.Core.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}

	return operation.Genesis{
		SchemaId:  s.Codex.CodexId,
		Issuer:    p.Core.Issuer,
		Testnet:   p.Core.Testnet,
		Timestamp: ts,
		Globals:   globals,
		Assigns:   owned,
		Valencies: operation.Valencies{},
	}, nil
}
