// Copyright 2025 Certen Protocol

package iface

import (
	"testing"

	"github.com/certen/rgb-stockpile/pkg/schema"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		GlobalTypes: map[schema.TypeId]schema.GlobalStateSchema{1: {}},
		OwnedTypes:  map[schema.TypeId]schema.OwnedStateSchema{2: {}},
		ValencyTypes: map[schema.TypeId]struct{}{3: {}},
		Transitions: map[schema.TypeId]schema.TransitionSchema{4: {}},
	}
}

func TestIfaceImplResolution(t *testing.T) {
	im := &IfaceImpl{
		Global:      map[string]schema.TypeId{"balance": 1},
		Assignments: map[string]schema.TypeId{"ownership": 2},
		Valencies:   map[string]schema.TypeId{"renomination": 3},
		Transitions: map[string]schema.TypeId{"transfer": 4},
	}
	if _, err := im.GlobalType("balance"); err != nil {
		t.Fatalf("GlobalType: %v", err)
	}
	if _, err := im.GlobalType("missing"); err == nil {
		t.Fatal("expected ErrGlobalNotFound")
	}
	if _, err := im.AssignmentType("ownership"); err != nil {
		t.Fatalf("AssignmentType: %v", err)
	}
	if _, err := im.TransitionType("transfer"); err != nil {
		t.Fatalf("TransitionType: %v", err)
	}
}

func TestConsistencyCheckDetectsMissingSchemaType(t *testing.T) {
	s := testSchema()
	im := &IfaceImpl{
		SchemaId: s.Codex.CodexId,
		Global:   map[string]schema.TypeId{"balance": 99},
	}
	if err := im.ConsistencyCheck(s); err == nil {
		t.Fatal("expected ErrInconsistent for undeclared global type")
	}
}

func TestConsistencyCheckPasses(t *testing.T) {
	s := testSchema()
	im := &IfaceImpl{
		SchemaId:    s.Codex.CodexId,
		Global:      map[string]schema.TypeId{"balance": 1},
		Assignments: map[string]schema.TypeId{"ownership": 2},
		Valencies:   map[string]schema.TypeId{"renomination": 3},
		Transitions: map[string]schema.TypeId{"transfer": 4},
	}
	if err := im.ConsistencyCheck(s); err != nil {
		t.Fatalf("expected consistent implementation, got %v", err)
	}
}

func TestDefaultAssignmentAndTransitionLookup(t *testing.T) {
	i := &Interface{DefaultAssignment: "ownership", DefaultTransition: "transfer"}
	im := &IfaceImpl{
		Assignments: map[string]schema.TypeId{"ownership": 2},
		Transitions: map[string]schema.TypeId{"transfer": 4},
	}
	if _, err := DefaultAssignmentType(i, im); err != nil {
		t.Fatalf("DefaultAssignmentType: %v", err)
	}
	if _, err := DefaultTransitionType(i, im); err != nil {
		t.Fatalf("DefaultTransitionType: %v", err)
	}

	empty := &Interface{}
	if _, err := DefaultAssignmentType(empty, im); err == nil {
		t.Fatal("expected ErrNoDefaultAssignment")
	}
}
