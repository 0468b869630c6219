// Copyright 2025 Certen Protocol

package schema

import (
	"fmt"

	"github.com/certen/rgb-stockpile/pkg/operation"
)

// ValidateTransition enforces schema cardinality for a transition
// before it is handed to the VM: the transition type itself must be
// declared, and every metadata/global/owned/valency type it touches
// must both be declared on the schema and be one of the types the
// transition's TransitionSchema entry lists, mirroring the per-type
// checks Schema.Issue already runs for a genesis.
func (s *Schema) ValidateTransition(t operation.Transition) error {
	transitionType := TypeId(t.TypeId)
	if err := s.CheckTransitionType(transitionType); err != nil {
		return err
	}
	ts := s.Transitions[transitionType]

	for rawTyp := range t.Metadata {
		typ := TypeId(rawTyp)
		if _, ok := s.MetaTypes[typ]; !ok {
			return fmt.Errorf("schema: unknown metadata type %d", typ)
		}
		if err := checkMember(typ, ts.MetaTypes); err != nil {
			return fmt.Errorf("schema: metadata type %d not declared for transition %d", typ, transitionType)
		}
	}

	for rawTyp, values := range t.Globals {
		typ := TypeId(rawTyp)
		if err := s.CheckGlobalType(typ); err != nil {
			return err
		}
		if err := checkMember(typ, ts.GlobalTypes); err != nil {
			return fmt.Errorf("schema: global type %d not declared for transition %d", typ, transitionType)
		}
		gts := s.GlobalTypes[typ]
		if gts.MaxItems > 0 && len(values) > gts.MaxItems {
			return fmt.Errorf("schema: global type %d carries %d values, max %d", typ, len(values), gts.MaxItems)
		}
	}

	for rawTyp := range t.Assigns {
		typ := TypeId(rawTyp)
		if err := s.CheckOwnedType(typ); err != nil {
			return err
		}
		if err := checkMember(typ, ts.OwnedTypes); err != nil {
			return fmt.Errorf("schema: owned type %d not declared for transition %d", typ, transitionType)
		}
	}

	for rawTyp := range t.Valencies {
		typ := TypeId(rawTyp)
		if err := s.CheckValencyType(typ); err != nil {
			return err
		}
		if err := checkMember(typ, ts.ValencyTypes); err != nil {
			return fmt.Errorf("schema: valency type %d not declared for transition %d", typ, transitionType)
		}
	}

	return nil
}

func checkMember(t TypeId, allowed []TypeId) error {
	for _, a := range allowed {
		if a == t {
			return nil
		}
	}
	return fmt.Errorf("type %d not in allowed set", t)
}
