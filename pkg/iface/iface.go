// Copyright 2025 Certen Protocol

// Package iface implements the human-named facade over a Schema: an
// Interface names metadata/global/owned/valency/transition slots by
// string, and an IfaceImpl binds those names to a concrete schema's
// numeric type ids.
package iface

import (
	"fmt"

	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// Interface is the named facade: every slot a contract built against
// it may use, keyed by a human name rather than a schema-local TypeId.
type Interface struct {
	Name               string
	IfaceId            strictypes.SemId
	MetadataNames      map[string]struct{}
	GlobalNames        map[string]struct{}
	AssignmentNames    map[string]struct{}
	ValencyNames       map[string]struct{}
	TransitionNames    map[string]struct{}
	DefaultAssignment  string
	DefaultTransition  string
}

// IfaceImpl binds an Interface's names onto one concrete Schema's
// numeric type ids.
type IfaceImpl struct {
	IfaceId         strictypes.SemId
	SchemaId        schema.CodexId
	Metadata        map[string]schema.TypeId
	Global          map[string]schema.TypeId
	Assignments     map[string]schema.TypeId
	Valencies       map[string]schema.TypeId
	Transitions     map[string]schema.TypeId
}

// MetadataType resolves name to its schema-level TypeId.
func (im *IfaceImpl) MetadataType(name string) (schema.TypeId, error) {
	t, ok := im.Metadata[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMetadataNotFound, name)
	}
	return t, nil
}

// GlobalType resolves name to its schema-level TypeId.
func (im *IfaceImpl) GlobalType(name string) (schema.TypeId, error) {
	t, ok := im.Global[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrGlobalNotFound, name)
	}
	return t, nil
}

// AssignmentType resolves name to its schema-level TypeId.
func (im *IfaceImpl) AssignmentType(name string) (schema.TypeId, error) {
	t, ok := im.Assignments[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrAssignmentNotFound, name)
	}
	return t, nil
}

// ValencyType resolves name to its schema-level TypeId.
func (im *IfaceImpl) ValencyType(name string) (schema.TypeId, error) {
	t, ok := im.Valencies[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrValencyNotFound, name)
	}
	return t, nil
}

// TransitionType resolves name to its schema-level TypeId.
func (im *IfaceImpl) TransitionType(name string) (schema.TypeId, error) {
	t, ok := im.Transitions[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrTransitionNotFound, name)
	}
	return t, nil
}

// DefaultAssignmentType resolves iface's declared default assignment
// name through im.
func DefaultAssignmentType(iface *Interface, im *IfaceImpl) (schema.TypeId, error) {
	if iface.DefaultAssignment == "" {
		return 0, ErrNoDefaultAssignment
	}
	return im.AssignmentType(iface.DefaultAssignment)
}

// DefaultTransitionType resolves iface's declared default transition
// name through im.
func DefaultTransitionType(iface *Interface, im *IfaceImpl) (schema.TypeId, error) {
	if iface.DefaultTransition == "" {
		return 0, ErrNoOperationSubtype
	}
	return im.TransitionType(iface.DefaultTransition)
}

// ConsistencyCheck verifies that every schema type im references is
// actually declared by s, and that im.SchemaId matches s's codex id.
// A failure here is a packaging error: the interface implementation
// was built against a different schema than the one it is paired with.
func (im *IfaceImpl) ConsistencyCheck(s *schema.Schema) error {
	if im.SchemaId != s.Codex.CodexId {
		return fmt.Errorf("%w: schema id %s does not match implementation's %s",
			ErrInconsistent, s.Codex.CodexId, im.SchemaId)
	}
	for name, t := range im.Metadata {
		if _, ok := s.MetaTypes[t]; !ok {
			return fmt.Errorf("%w: metadata %q -> type %d not declared by schema", ErrInconsistent, name, t)
		}
	}
	for name, t := range im.Global {
		if err := s.CheckGlobalType(t); err != nil {
			return fmt.Errorf("%w: global %q: %v", ErrInconsistent, name, err)
		}
	}
	for name, t := range im.Assignments {
		if err := s.CheckOwnedType(t); err != nil {
			return fmt.Errorf("%w: assignment %q: %v", ErrInconsistent, name, err)
		}
	}
	for name, t := range im.Valencies {
		if err := s.CheckValencyType(t); err != nil {
			return fmt.Errorf("%w: valency %q: %v", ErrInconsistent, name, err)
		}
	}
	for name, t := range im.Transitions {
		if err := s.CheckTransitionType(t); err != nil {
			return fmt.Errorf("%w: transition %q: %v", ErrInconsistent, name, err)
		}
	}
	return nil
}
