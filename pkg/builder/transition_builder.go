// Copyright 2025 Certen Protocol

package builder

import (
	"fmt"
	"log"
	"math"

	"github.com/certen/rgb-stockpile/pkg/iface"
	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/statecalc"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// TransitionBuilder assembles a Transition operation: it tracks the
// contract it belongs to, the declared transition type, the inputs it
// consumes, and (except for blank transitions) a StateCalc tallying
// conserved value across those inputs.
type TransitionBuilder struct {
	operationBuilder
	contractId strictypes.ContractId
	typeId     schema.TypeId
	nonce      uint64
	inputs     []operation.Input
	calc       *statecalc.StateCalc // nil for blank transitions
}

// BlankTransition starts a transition that moves state forward without
// invoking the schema's validation script (the original's
// `blank_transition`): calc is always nil, so AddOwnedStateChange is
// unavailable and every assignment must go through
// AddOwnedStateBlank.
func BlankTransition(contractId strictypes.ContractId, s *schema.Schema, i *iface.Interface, im *iface.IfaceImpl, ts *strictypes.TypeSystem) *TransitionBuilder {
	logger := log.New(log.Writer(), "[TransitionBuilder] ", log.LstdFlags)
	return &TransitionBuilder{
		operationBuilder: newOperationBuilder(s, i, im, ts, logger),
		contractId:       contractId,
		nonce:            math.MaxUint64,
	}
}

// DefaultTransition starts a transition of the interface's declared
// default transition type, with a StateCalc driven by abi.
func DefaultTransition(contractId strictypes.ContractId, s *schema.Schema, i *iface.Interface, im *iface.IfaceImpl, ts *strictypes.TypeSystem, abi map[statecalc.TypeId]statecalc.AmountCodec) (*TransitionBuilder, error) {
	t, err := iface.DefaultTransitionType(i, im)
	if err != nil {
		return nil, err
	}
	return namedTransitionOfType(contractId, s, i, im, ts, abi, t), nil
}

// NamedTransition starts a transition of the type named by the
// interface as name, with a StateCalc driven by abi.
func NamedTransition(contractId strictypes.ContractId, s *schema.Schema, i *iface.Interface, im *iface.IfaceImpl, ts *strictypes.TypeSystem, abi map[statecalc.TypeId]statecalc.AmountCodec, name string) (*TransitionBuilder, error) {
	t, err := im.TransitionType(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransitionNotFound, err)
	}
	return namedTransitionOfType(contractId, s, i, im, ts, abi, t), nil
}

func namedTransitionOfType(contractId strictypes.ContractId, s *schema.Schema, i *iface.Interface, im *iface.IfaceImpl, ts *strictypes.TypeSystem, abi map[statecalc.TypeId]statecalc.AmountCodec, t schema.TypeId) *TransitionBuilder {
	logger := log.New(log.Writer(), "[TransitionBuilder] ", log.LstdFlags)
	return &TransitionBuilder{
		operationBuilder: newOperationBuilder(s, i, im, ts, logger),
		contractId:       contractId,
		typeId:           t,
		nonce:            math.MaxUint64,
		calc:             statecalc.New(abi),
	}
}

// SetNonce overrides the transition's nonce (default: the maximum
// value, matching the original's `u64::MAX` sentinel for "not yet
// assigned by the caller's nonce allocation policy").
func (b *TransitionBuilder) SetNonce(nonce uint64) *TransitionBuilder {
	b.nonce = nonce
	return b
}

// AddInput registers a consumed prior output. If the builder carries a
// StateCalc (i.e. this is not a blank transition), state's owned-state
// data is also registered into the calculator's running totals for the
// corresponding assignment type.
func (b *TransitionBuilder) AddInput(in operation.Input, assignmentType schema.TypeId, data []byte) (*TransitionBuilder, error) {
	if err := b.checkNotConsumed(); err != nil {
		return nil, err
	}
	b.inputs = append(b.inputs, in)
	if b.calc != nil {
		if err := b.calc.RegInput(statecalc.TypeId(assignmentType), data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// AddMetadata typifies raw against the named metadata field.
func (b *TransitionBuilder) AddMetadata(name string, raw []byte) (*TransitionBuilder, error) {
	if err := b.addMetadata(name, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// AddGlobalState typifies raw against the named global field and
// appends it to the transition's global state log.
func (b *TransitionBuilder) AddGlobalState(name string, raw []byte) (*TransitionBuilder, error) {
	if err := b.addGlobalState(name, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// FulfillOwnedState draws as much of `requested` worth of state for
// the named assignment type from the StateCalc's registered inputs as
// is available, attaching the sufficient portion to sealValue as an
// output. Per spec.md:146's calc_output contract, the residual
// (insufficient) is returned rather than erroring, so the caller can
// retry it against another UTXO's input before calling
// AddOwnedStateChange. residual is nil when the full requested amount
// was covered. Unavailable on blank transitions.
func (b *TransitionBuilder) FulfillOwnedState(name string, sealValue seal.EitherSeal, requested []byte) (*TransitionBuilder, []byte, error) {
	if err := b.checkNotConsumed(); err != nil {
		return nil, nil, err
	}
	if b.calc == nil {
		return nil, nil, fmt.Errorf("builder: FulfillOwnedState requires a non-blank transition")
	}
	t, err := b.iimpl.AssignmentType(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAssignmentNotFound, err)
	}
	sufficient, insufficient, err := b.calc.CalcOutput(statecalc.TypeId(t), requested)
	if err != nil {
		return nil, nil, err
	}
	if sufficient != nil {
		if err := b.addOwnedState(name, sealValue, sufficient, nil); err != nil {
			return nil, nil, err
		}
	}
	return b, insufficient, nil
}

// AddOwnedStateChange attaches whatever remains registered for the
// named assignment type (after FulfillOwnedState calls) to sealValue
// as a change output. A no-op (returning b, nil) if no change remains.
func (b *TransitionBuilder) AddOwnedStateChange(name string, sealValue seal.EitherSeal) (*TransitionBuilder, error) {
	if err := b.checkNotConsumed(); err != nil {
		return nil, err
	}
	if b.calc == nil {
		return nil, fmt.Errorf("builder: AddOwnedStateChange requires a non-blank transition")
	}
	t, err := b.iimpl.AssignmentType(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssignmentNotFound, err)
	}
	change, ok := b.calc.CalcChange(statecalc.TypeId(t))
	if !ok {
		return b, nil
	}
	if err := b.addOwnedState(name, sealValue, change, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// AddOwnedStateBlank attaches raw directly to sealValue with no
// StateCalc bookkeeping, bypassing the schema's validation script
// entirely — the only way to attach owned state on a blank transition.
func (b *TransitionBuilder) AddOwnedStateBlank(name string, sealValue seal.EitherSeal, raw []byte) (*TransitionBuilder, error) {
	if err := b.addOwnedState(name, sealValue, raw, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// CompleteTransition finalizes the builder into a Transition. Per the
// original implementation, the resulting Transition's Metadata is
// always empty, even though metadata may have been accumulated during
// assembly via AddMetadata — see DESIGN.md's open-question entry for
// why this is intentional rather than a bug.
func (b *TransitionBuilder) CompleteTransition() (operation.Transition, error) {
	if err := b.checkNotConsumed(); err != nil {
		return operation.Transition{}, err
	}
	b.consumed = true
	return operation.Transition{
		ContractId: b.contractId,
		TypeId:     operation.TypeId(b.typeId),
		Nonce:      b.nonce,
		Metadata:   operation.Metadata{},
		Globals:    b.global,
		Inputs:     b.inputs,
		Assigns:    b.assignments,
		Valencies:  b.valencies,
	}, nil
}

// CompleteBlankTransition is CompleteTransition restricted to blank
// transitions, failing loudly if called on a non-blank builder so a
// caller cannot silently skip schema validation by mistake.
func (b *TransitionBuilder) CompleteBlankTransition() (operation.Transition, error) {
	if b.calc != nil {
		return operation.Transition{}, fmt.Errorf("builder: CompleteBlankTransition called on a non-blank transition")
	}
	return b.CompleteTransition()
}
