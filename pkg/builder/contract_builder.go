// Copyright 2025 Certen Protocol

package builder

import (
	"fmt"
	"log"
	"time"

	"github.com/certen/rgb-stockpile/pkg/iface"
	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/resolver"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

const maxAltLayers1 = 2

// ContractBuilder assembles a Genesis operation: the issuer-facing
// facade over OperationBuilder that also tracks which layer-1 chains
// (beyond Bitcoin mainnet/testnet) the contract may be anchored to.
type ContractBuilder struct {
	operationBuilder
	testnet    bool
	altLayers1 []string
	issuer     string
}

// NewContractBuilder starts assembling a genesis operation against s,
// under the named interface i bound to im.
func NewContractBuilder(s *schema.Schema, i *iface.Interface, im *iface.IfaceImpl, ts *strictypes.TypeSystem, issuer string) (*ContractBuilder, error) {
	if err := im.ConsistencyCheck(s); err != nil {
		return nil, err
	}
	logger := log.New(log.Writer(), "[ContractBuilder] ", log.LstdFlags)
	return &ContractBuilder{
		operationBuilder: newOperationBuilder(s, i, im, ts, logger),
		issuer:           issuer,
	}, nil
}

// SetMainnet marks the contract as intended for Bitcoin mainnet.
func (b *ContractBuilder) SetMainnet() *ContractBuilder {
	b.testnet = false
	return b
}

// SetTestnet marks the contract as intended for Bitcoin testnet.
func (b *ContractBuilder) SetTestnet() *ContractBuilder {
	b.testnet = true
	return b
}

// HasLayer1 reports whether name has already been added as an
// alternate layer-1 chain.
func (b *ContractBuilder) HasLayer1(name string) bool {
	for _, l := range b.altLayers1 {
		if l == name {
			return true
		}
	}
	return false
}

// CheckLayer1 fails with ErrInvalidLayer1 unless name is Bitcoin (the
// implicit layer) or has already been added as an alt layer-1 chain.
func (b *ContractBuilder) CheckLayer1(name string) error {
	if name == "bitcoin" || b.HasLayer1(name) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidLayer1, name)
}

// AddLayer1 registers an additional layer-1 chain (e.g. "liquid") the
// contract may be sealed against, up to maxAltLayers1.
func (b *ContractBuilder) AddLayer1(name string) (*ContractBuilder, error) {
	if err := b.checkNotConsumed(); err != nil {
		return nil, err
	}
	if b.HasLayer1(name) {
		return b, nil
	}
	if len(b.altLayers1) >= maxAltLayers1 {
		return nil, ErrTooManyLayers1
	}
	b.altLayers1 = append(b.altLayers1, name)
	return b, nil
}

// AddMetadata typifies raw against the named metadata field and stores
// it for the genesis.
func (b *ContractBuilder) AddMetadata(name string, raw []byte) (*ContractBuilder, error) {
	if err := b.addMetadata(name, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// AddGlobalState typifies raw against the named global field and
// appends it to the genesis's global state log.
func (b *ContractBuilder) AddGlobalState(name string, raw []byte) (*ContractBuilder, error) {
	if err := b.addGlobalState(name, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// AddOwnedStateRaw inserts raw directly under the numeric assignment
// type, bypassing name resolution and Typify — spec.md:80's low-level
// add_owned_state_raw(type_id, seal, state).
func (b *ContractBuilder) AddOwnedStateRaw(t operation.TypeId, sealValue seal.EitherSeal, raw []byte) (*ContractBuilder, error) {
	if err := b.addOwnedStateRaw(t, sealValue, raw, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// AddOwnedState resolves name (through the interface's default
// assignment when name is empty), typifies raw, optionally attaches
// attach, and delegates to the numeric-keyed add_owned_state_raw —
// spec.md:81's add_owned_state(name, seal, value, attach).
func (b *ContractBuilder) AddOwnedState(name string, sealValue seal.EitherSeal, raw []byte, attach *strictypes.AttachId) (*ContractBuilder, error) {
	if name == "" {
		t, err := iface.DefaultAssignmentType(b.iface, b.iimpl)
		if err != nil {
			return nil, err
		}
		for n, id := range b.iimpl.Assignments {
			if id == t {
				name = n
				break
			}
		}
	}
	if err := b.addOwnedState(name, sealValue, raw, attach); err != nil {
		return nil, err
	}
	return b, nil
}

// SerializeMetadata attaches raw directly under name's metadata type
// without re-typifying it — spec.md:78's serialize_metadata.
func (b *ContractBuilder) SerializeMetadata(name string, raw []byte) (*ContractBuilder, error) {
	if err := b.serializeMetadata(name, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// SerializeGlobalState attaches raw directly under name's global type
// without re-typifying it — spec.md:79's serialize_global_state.
func (b *ContractBuilder) SerializeGlobalState(name string, raw []byte) (*ContractBuilder, error) {
	if err := b.serializeGlobalState(name, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// SerializeOwnedState attaches raw directly under name's assignment
// type without re-typifying it, optionally attaching attach —
// spec.md:81's serialize_owned_state.
func (b *ContractBuilder) SerializeOwnedState(name string, sealValue seal.EitherSeal, raw []byte, attach *strictypes.AttachId) (*ContractBuilder, error) {
	if err := b.serializeOwnedState(name, sealValue, raw, attach); err != nil {
		return nil, err
	}
	return b, nil
}

// SetDebug toggles the serialize_* methods' round-trip Typify check.
func (b *ContractBuilder) SetDebug(debug bool) *ContractBuilder {
	b.operationBuilder.SetDebug(debug)
	return b
}

// AddRights attaches a rights-only (no data) owned-state assignment.
func (b *ContractBuilder) AddRights(name string, sealValue seal.EitherSeal) (*ContractBuilder, error) {
	if err := b.addRights(name, sealValue); err != nil {
		return nil, err
	}
	return b, nil
}

// IssueContract finalizes the builder into a Genesis operation,
// stamping the current time. The builder is single-use: calling any
// Add* method on it afterwards returns ErrAlreadyComplete.
func (b *ContractBuilder) IssueContract() (operation.Genesis, error) {
	return b.IssueContractDet(time.Now().Unix())
}

// IssueContractDet is IssueContract with an explicit, deterministic
// timestamp — used by tests and by re-issuing a contract byte-for-byte
// identically.
func (b *ContractBuilder) IssueContractDet(timestamp int64) (operation.Genesis, error) {
	if err := b.checkNotConsumed(); err != nil {
		return operation.Genesis{}, err
	}
	b.consumed = true
	return operation.Genesis{
		SchemaId:  b.schema.Codex.CodexId,
		Issuer:    b.issuer,
		Testnet:   b.testnet,
		Timestamp: timestamp,
		Metadata:  b.metadata,
		Globals:   b.global,
		Assigns:   b.assignments,
		Valencies: b.valencies,
	}, nil
}

// IssueContractRaw builds the genesis operation, accepting a Resolver
// for call-site symmetry with transition validation even though a
// genesis has no prior seals to confirm and so never actually queries
// r — matching the original's pattern of issuing against DumbResolver
// wherever no chain lookup is truly required.
func (b *ContractBuilder) IssueContractRaw(_ resolver.Resolver) (operation.Genesis, error) {
	return b.IssueContract()
}
