// Copyright 2025 Certen Protocol

package schema

import (
	"testing"

	"github.com/certen/rgb-stockpile/pkg/seal"
)

type fakeResolver struct {
	global map[string]TypeId
	owned  map[string]TypeId
}

func (f fakeResolver) GlobalType(name string) (TypeId, error)     { return f.global[name], nil }
func (f fakeResolver) AssignmentType(name string) (TypeId, error) { return f.owned[name], nil }

func TestResolveAndIssue(t *testing.T) {
	s := &Schema{
		GlobalTypes: map[TypeId]GlobalStateSchema{1: {MaxItems: 2}},
		OwnedTypes:  map[TypeId]OwnedStateSchema{2: {}},
	}

	params := CreateParams{
		Core: CoreParams{SchemaId: s.Codex.CodexId, Issuer: "issuer-1", Timestamp: 42},
		Global: []NamedState{
			{Name: "supply", Data: []byte{0, 0, 0, 0, 0, 0, 0, 100}},
		},
		Owned: []NamedState{
			{Name: "ownership", Data: []byte{0, 0, 0, 0, 0, 0, 0, 100}, Seal: seal.TokenSeal([32]byte{0x01})},
		},
	}
	resolver := fakeResolver{
		global: map[string]TypeId{"supply": 1},
		owned:  map[string]TypeId{"ownership": 2},
	}

	issueParams, err := ResolveParams(params, resolver)
	if err != nil {
		t.Fatalf("ResolveParams: %v", err)
	}

	genesis, err := s.Issue(issueParams)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if genesis.Issuer != "issuer-1" {
		t.Fatalf("Issuer = %q, want issuer-1", genesis.Issuer)
	}
	if genesis.Timestamp != 42 {
		t.Fatalf("Timestamp = %d, want 42", genesis.Timestamp)
	}
	if len(genesis.Globals[1]) != 1 {
		t.Fatalf("expected 1 global value under type 1, got %d", len(genesis.Globals[1]))
	}
	if len(genesis.Assigns[2]) != 1 {
		t.Fatalf("expected 1 owned assignment under type 2, got %d", len(genesis.Assigns[2]))
	}
}

func TestIssueRejectsUndeclaredGlobalType(t *testing.T) {
	s := &Schema{GlobalTypes: map[TypeId]GlobalStateSchema{}}
	_, err := s.Issue(IssueParams{
		Core:   CoreParams{SchemaId: s.Codex.CodexId},
		Global: map[TypeId][][]byte{99: {{0}}},
	})
	if err == nil {
		t.Fatal("expected ErrUnknownGlobalType")
	}
}

func TestIssueRejectsGlobalTypeOverMaxItems(t *testing.T) {
	s := &Schema{GlobalTypes: map[TypeId]GlobalStateSchema{1: {MaxItems: 1}}}
	_, err := s.Issue(IssueParams{
		Core:   CoreParams{SchemaId: s.Codex.CodexId},
		Global: map[TypeId][][]byte{1: {{0}, {1}}},
	})
	if err == nil {
		t.Fatal("expected an error exceeding MaxItems")
	}
}

func TestIssueRejectsSchemaMismatch(t *testing.T) {
	s := &Schema{}
	_, err := s.Issue(IssueParams{Core: CoreParams{SchemaId: CodexId{0xff}}})
	if err == nil {
		t.Fatal("expected ErrSchemaMismatch")
	}
}
