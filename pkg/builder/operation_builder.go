// Copyright 2025 Certen Protocol

// Package builder implements the contract assembly facades ported from
// original_source/src/interface/builder.rs: OperationBuilder's shared
// metadata/global/owned-state accumulation, specialized by
// ContractBuilder for genesis issuance and TransitionBuilder for state
// transitions.
package builder

import (
	"fmt"
	"log"

	"github.com/certen/rgb-stockpile/pkg/iface"
	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
	"github.com/google/uuid"
)

// operationBuilder holds the state and name-resolution helpers shared
// by ContractBuilder and TransitionBuilder. It is never constructed or
// used directly by callers; it is embedded.
type operationBuilder struct {
	schema *schema.Schema
	iface  *iface.Interface
	iimpl  *iface.IfaceImpl
	types  *strictypes.TypeSystem

	metadata    operation.Metadata
	global      operation.GlobalState
	assignments operation.Assignments
	valencies   operation.Valencies

	sessionId uuid.UUID
	logger    *log.Logger
	consumed  bool
	debug     bool
}

// SetDebug toggles the round-trip Typify check the serialize_* methods
// run against already-typed values, matching spec.md:78's "in debug
// mode" note for catching type-ABI drift between a caller's own
// encoder and the schema's SemId.
func (b *operationBuilder) SetDebug(debug bool) {
	b.debug = debug
}

func newOperationBuilder(s *schema.Schema, i *iface.Interface, im *iface.IfaceImpl, ts *strictypes.TypeSystem, logger *log.Logger) operationBuilder {
	if logger == nil {
		logger = log.New(log.Writer(), "[Builder] ", log.LstdFlags)
	}
	return operationBuilder{
		schema:      s,
		iface:       i,
		iimpl:       im,
		types:       ts,
		metadata:    make(operation.Metadata),
		global:      make(operation.GlobalState),
		assignments: make(operation.Assignments),
		valencies:   make(operation.Valencies),
		sessionId:   uuid.New(),
		logger:      logger,
	}
}

func (b *operationBuilder) checkNotConsumed() error {
	if b.consumed {
		return ErrAlreadyComplete
	}
	return nil
}

// addMetadata resolves name through the interface, typifies raw
// against its declared semantic type, and stores it.
func (b *operationBuilder) addMetadata(name string, raw []byte) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	t, err := b.iimpl.MetadataType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataNotFound, err)
	}
	semId, ok := b.schema.MetaTypes[t]
	if !ok {
		return fmt.Errorf("%w: schema carries no semantic type for metadata %d", ErrTypify, t)
	}
	typed, err := b.types.Typify(semId, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTypify, err)
	}
	b.metadata[operation.TypeId(t)] = typed
	b.logger.Printf("session=%s added metadata %q (type %d, %d bytes)", b.sessionId, name, t, len(typed))
	return nil
}

// addGlobalState resolves name, typifies raw, and appends it to that
// global type's state log, enforcing the schema's MaxItems bound.
func (b *operationBuilder) addGlobalState(name string, raw []byte) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	t, err := b.iimpl.GlobalType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGlobalNotFound, err)
	}
	gts, ok := b.schema.GlobalTypes[t]
	if !ok {
		return fmt.Errorf("%w: schema carries no global type %d", ErrTypify, t)
	}
	typed, err := b.types.Typify(gts.SemId, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTypify, err)
	}
	gt := operation.TypeId(t)
	if gts.MaxItems > 0 && len(b.global[gt])+1 > gts.MaxItems {
		return fmt.Errorf("%w: global type %d limited to %d items", ErrConfinement, t, gts.MaxItems)
	}
	b.global[gt] = append(b.global[gt], typed)
	b.logger.Printf("session=%s added global state %q (type %d)", b.sessionId, name, t)
	return nil
}

// addOwnedStateRaw inserts an already-encoded value directly under the
// numeric assignment type t, with no name resolution and no Typify —
// spec.md:80's low-level `add_owned_state_raw(type_id, seal, state)`.
// If t already carries assignments, the new one is pushed onto its
// typed list, preserving insertion order.
func (b *operationBuilder) addOwnedStateRaw(t operation.TypeId, sealValue seal.EitherSeal, raw []byte, attach *strictypes.AttachId) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	b.assignments[t] = append(b.assignments[t], operation.AssignmentState{Seal: sealValue, Data: raw, Attach: attach})
	b.logger.Printf("session=%s added raw owned state (type %d)", b.sessionId, t)
	return nil
}

// addOwnedState resolves name, typifies raw against its declared
// semantic type, and delegates to addOwnedStateRaw with the resolved
// numeric type id and the given attach — spec.md:81's convenience
// layer over add_owned_state_raw.
func (b *operationBuilder) addOwnedState(name string, sealValue seal.EitherSeal, raw []byte, attach *strictypes.AttachId) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	t, err := b.iimpl.AssignmentType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssignmentNotFound, err)
	}
	ots, ok := b.schema.OwnedTypes[t]
	if !ok {
		return fmt.Errorf("%w: schema carries no owned type %d", ErrTypify, t)
	}
	typed, err := b.types.Typify(ots.SemId, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTypify, err)
	}
	b.logger.Printf("session=%s added owned state %q (type %d)", b.sessionId, name, t)
	return b.addOwnedStateRaw(operation.TypeId(t), sealValue, typed, attach)
}

// serializeMetadata attaches raw directly under name's resolved
// metadata type, skipping Typify because raw is already schema-typed
// — spec.md:78's serialize_metadata. In debug mode raw is round-
// tripped back through the schema's SemId to catch type-ABI drift.
func (b *operationBuilder) serializeMetadata(name string, raw []byte) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	t, err := b.iimpl.MetadataType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataNotFound, err)
	}
	semId, ok := b.schema.MetaTypes[t]
	if !ok {
		return fmt.Errorf("%w: schema carries no semantic type for metadata %d", ErrTypify, t)
	}
	if b.debug {
		if _, err := b.types.Typify(semId, raw); err != nil {
			return fmt.Errorf("%w: debug round-trip for metadata %d: %v", ErrTypify, t, err)
		}
	}
	b.metadata[operation.TypeId(t)] = raw
	b.logger.Printf("session=%s serialized metadata %q (type %d, %d bytes, pre-typed)", b.sessionId, name, t, len(raw))
	return nil
}

// serializeGlobalState is addGlobalState with the Typify step skipped,
// spec.md:79's serialize_global_state; the MaxItems bound is still
// enforced since cardinality is a schema property independent of
// typing.
func (b *operationBuilder) serializeGlobalState(name string, raw []byte) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	t, err := b.iimpl.GlobalType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGlobalNotFound, err)
	}
	gts, ok := b.schema.GlobalTypes[t]
	if !ok {
		return fmt.Errorf("%w: schema carries no global type %d", ErrTypify, t)
	}
	if b.debug {
		if _, err := b.types.Typify(gts.SemId, raw); err != nil {
			return fmt.Errorf("%w: debug round-trip for global %d: %v", ErrTypify, t, err)
		}
	}
	gt := operation.TypeId(t)
	if gts.MaxItems > 0 && len(b.global[gt])+1 > gts.MaxItems {
		return fmt.Errorf("%w: global type %d limited to %d items", ErrConfinement, t, gts.MaxItems)
	}
	b.global[gt] = append(b.global[gt], raw)
	b.logger.Printf("session=%s serialized global state %q (type %d, pre-typed)", b.sessionId, name, t)
	return nil
}

// serializeOwnedState is addOwnedState with the Typify step skipped,
// spec.md:81's serialize_owned_state convenience layer.
func (b *operationBuilder) serializeOwnedState(name string, sealValue seal.EitherSeal, raw []byte, attach *strictypes.AttachId) error {
	if err := b.checkNotConsumed(); err != nil {
		return err
	}
	t, err := b.iimpl.AssignmentType(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssignmentNotFound, err)
	}
	ots, ok := b.schema.OwnedTypes[t]
	if !ok {
		return fmt.Errorf("%w: schema carries no owned type %d", ErrTypify, t)
	}
	if b.debug {
		if _, err := b.types.Typify(ots.SemId, raw); err != nil {
			return fmt.Errorf("%w: debug round-trip for owned %d: %v", ErrTypify, t, err)
		}
	}
	b.logger.Printf("session=%s serialized owned state %q (type %d, pre-typed)", b.sessionId, name, t)
	return b.addOwnedStateRaw(operation.TypeId(t), sealValue, raw, attach)
}

// addRights attaches a valency-only (no data) owned-state assignment,
// used for distribution/rights-only assignment types.
func (b *operationBuilder) addRights(name string, sealValue seal.EitherSeal) error {
	return b.addOwnedState(name, sealValue, nil, nil)
}
