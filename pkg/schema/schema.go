// Copyright 2025 Certen Protocol

// Package schema implements the declarative contract grammar (Schema
// plus its embedded Codex) that a Mound's schemata registry holds, and
// that every issued contract is validated against.
package schema

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/certen/rgb-stockpile/pkg/strictypes"
	"gopkg.in/yaml.v3"
)

// MethodName names a codex-level VM entry point (issuance validation
// script, transition validation script, and so on).
type MethodName string

// Codex is the compiled rule set a schema is built around. The VM that
// interprets Libs is an external collaborator; the codex only carries
// the opaque bytecode and the method table pointing into it.
type Codex struct {
	CodexId CodexId           `yaml:"codex_id"`
	Libs    []byte            `yaml:"libs"`
	Methods map[MethodName]int `yaml:"methods"` // entry offset into Libs
}

// GlobalStateSchema declares the confinement bounds of one kind of
// global state.
type GlobalStateSchema struct {
	SemId    strictypes.SemId     `yaml:"sem_id"`
	MaxItems int                  `yaml:"max_items"`
	Conf     strictypes.Confinement `yaml:"confinement"`
}

// OwnedStateSchema declares the confinement bounds of one kind of
// owned (per-seal) state.
type OwnedStateSchema struct {
	SemId strictypes.SemId `yaml:"sem_id"`
}

// TransitionSchema declares which global/owned/valency types a given
// transition type may touch, and which codex method validates it.
type TransitionSchema struct {
	GlobalTypes  []TypeId   `yaml:"global_types"`
	OwnedTypes   []TypeId   `yaml:"owned_types"`
	ValencyTypes []TypeId   `yaml:"valency_types"`
	MetaTypes    []TypeId   `yaml:"meta_types"`
	Method       MethodName `yaml:"method"`
}

// TypeId is a small ordinal identifying one declared state/valency slot
// within a schema (metadata, global, owned, or valency types are each
// numbered independently).
type TypeId uint16

// CodexId aliases strictypes.CodexId for readability in this package.
type CodexId = strictypes.CodexId

// Schema is the full declarative grammar: the set of metadata, global,
// owned and valency types a contract built from it may use, and the
// transition types it permits, layered over a Codex.
type Schema struct {
	Name        string
	Codex       Codex
	MetaTypes   map[TypeId]strictypes.SemId         `yaml:"meta_types"`
	GlobalTypes map[TypeId]GlobalStateSchema         `yaml:"global_types"`
	OwnedTypes  map[TypeId]OwnedStateSchema          `yaml:"owned_types"`
	ValencyTypes map[TypeId]struct{}                 `yaml:"valency_types"`
	Transitions map[TypeId]TransitionSchema          `yaml:"transitions"`
	GenesisUses TransitionSchema                     `yaml:"genesis"`
}

// schemaFile is the on-disk YAML shape a .issuer file stores; it
// mirrors Schema but keeps the Codex bytecode as a separate hex string
// so the file stays human-editable.
type schemaFile struct {
	Name  string `yaml:"name"`
	Codex struct {
		CodexId string             `yaml:"codex_id"`
		LibsHex string             `yaml:"libs_hex"`
		Methods map[MethodName]int `yaml:"methods"`
	} `yaml:"codex"`
	MetaTypes    map[TypeId]string            `yaml:"meta_types"`
	GlobalTypes  map[TypeId]GlobalStateSchema `yaml:"global_types"`
	OwnedTypes   map[TypeId]OwnedStateSchema  `yaml:"owned_types"`
	ValencyTypes []TypeId                     `yaml:"valency_types"`
	Transitions  map[TypeId]TransitionSchema  `yaml:"transitions"`
	Genesis      TransitionSchema             `yaml:"genesis"`
}

// Load reads a .issuer schema file from disk.
func Load(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFile, err)
	}
	var sf schemaFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFile, err)
	}
	s := &Schema{
		Name:         sf.Name,
		MetaTypes:    make(map[TypeId]strictypes.SemId, len(sf.MetaTypes)),
		GlobalTypes:  sf.GlobalTypes,
		OwnedTypes:   sf.OwnedTypes,
		ValencyTypes: make(map[TypeId]struct{}, len(sf.ValencyTypes)),
		Transitions:  sf.Transitions,
		GenesisUses:  sf.Genesis,
	}
	for id, hexStr := range sf.MetaTypes {
		h, err := decodeSemId(hexStr)
		if err != nil {
			return nil, fmt.Errorf("%w: meta type %d: %v", ErrLoadFile, id, err)
		}
		s.MetaTypes[id] = h
	}
	for _, id := range sf.ValencyTypes {
		s.ValencyTypes[id] = struct{}{}
	}
	if sf.Codex.CodexId != "" {
		id, err := decodeSemId(sf.Codex.CodexId)
		if err != nil {
			return nil, fmt.Errorf("%w: codex id: %v", ErrLoadFile, err)
		}
		s.Codex.CodexId = id
	}
	libs, err := hex.DecodeString(sf.Codex.LibsHex)
	if err != nil {
		return nil, fmt.Errorf("%w: codex libs: %v", ErrLoadFile, err)
	}
	s.Codex.Libs = libs
	s.Codex.Methods = sf.Codex.Methods
	return s, nil
}

func decodeSemId(s string) (strictypes.SemId, error) {
	var h strictypes.SemId
	if err := h.UnmarshalText([]byte(s)); err != nil {
		return strictypes.SemId{}, err
	}
	return h, nil
}

// CheckTransitionType returns ErrUnknownTransitionType if t is not
// declared by the schema.
func (s *Schema) CheckTransitionType(t TypeId) error {
	if _, ok := s.Transitions[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTransitionType, t)
	}
	return nil
}

// CheckGlobalType returns ErrUnknownGlobalType if t is not declared.
func (s *Schema) CheckGlobalType(t TypeId) error {
	if _, ok := s.GlobalTypes[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownGlobalType, t)
	}
	return nil
}

// CheckOwnedType returns ErrUnknownOwnedType if t is not declared.
func (s *Schema) CheckOwnedType(t TypeId) error {
	if _, ok := s.OwnedTypes[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownOwnedType, t)
	}
	return nil
}

// CheckValencyType returns ErrUnknownValencyType if t is not declared.
func (s *Schema) CheckValencyType(t TypeId) error {
	if _, ok := s.ValencyTypes[t]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownValencyType, t)
	}
	return nil
}
