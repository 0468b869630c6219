// Copyright 2025 Certen Protocol

package strictypes

import "fmt"

// Primitive enumerates the scalar kinds a semantic type can describe.
type Primitive uint8

const (
	PrimU8 Primitive = iota
	PrimU16
	PrimU32
	PrimU64
	PrimBytes
	PrimAsciiString
)

// TypeDescriptor describes the shape a value registered under a SemId
// must take: either a bare scalar, or a confined byte blob.
type TypeDescriptor struct {
	Name       string
	Prim       Primitive
	Confined   bool
	Confinement Confinement
	MaxLen     int
}

// TypeSystem is a registry mapping SemId to the descriptor of the
// semantic type it identifies, the runtime counterpart of a schema's
// declared metadata/global/owned state types.
type TypeSystem struct {
	types map[SemId]TypeDescriptor
}

// NewTypeSystem returns an empty registry.
func NewTypeSystem() *TypeSystem {
	return &TypeSystem{types: make(map[SemId]TypeDescriptor)}
}

// Register adds or replaces the descriptor for id.
func (ts *TypeSystem) Register(id SemId, desc TypeDescriptor) {
	ts.types[id] = desc
}

// Lookup returns the descriptor registered under id.
func (ts *TypeSystem) Lookup(id SemId) (TypeDescriptor, error) {
	d, ok := ts.types[id]
	if !ok {
		return TypeDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}
	return d, nil
}

// Typify validates raw against the descriptor registered under id and
// returns its canonical strict-encoded bytes. This is the runtime
// counterpart to the original's TypeSystem::strict_deserialize +
// Typify path the builder funnels every add_* call through.
func (ts *TypeSystem) Typify(id SemId, raw []byte) ([]byte, error) {
	desc, err := ts.Lookup(id)
	if err != nil {
		return nil, err
	}
	if desc.Confined && desc.MaxLen > 0 && len(raw) > desc.MaxLen {
		return nil, fmt.Errorf("%w: %s accepts at most %d bytes, got %d",
			ErrTypify, desc.Name, desc.MaxLen, len(raw))
	}
	switch desc.Prim {
	case PrimU8:
		if len(raw) != 1 {
			return nil, fmt.Errorf("%w: %s expects 1 byte, got %d", ErrTypify, desc.Name, len(raw))
		}
	case PrimU16:
		if len(raw) != 2 {
			return nil, fmt.Errorf("%w: %s expects 2 bytes, got %d", ErrTypify, desc.Name, len(raw))
		}
	case PrimU32:
		if len(raw) != 4 {
			return nil, fmt.Errorf("%w: %s expects 4 bytes, got %d", ErrTypify, desc.Name, len(raw))
		}
	case PrimU64:
		if len(raw) != 8 {
			return nil, fmt.Errorf("%w: %s expects 8 bytes, got %d", ErrTypify, desc.Name, len(raw))
		}
	case PrimBytes, PrimAsciiString:
		// any length accepted, subject to the confinement check above
	default:
		return nil, fmt.Errorf("%w: unknown primitive kind for %s", ErrTypify, desc.Name)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}
