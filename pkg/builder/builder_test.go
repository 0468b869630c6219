// Copyright 2025 Certen Protocol

package builder

import (
	"testing"

	"github.com/certen/rgb-stockpile/pkg/iface"
	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/statecalc"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

func testFixture() (*schema.Schema, *iface.Interface, *iface.IfaceImpl, *strictypes.TypeSystem) {
	amountSem := strictypes.SemId{0x01}
	s := &schema.Schema{
		MetaTypes:   map[schema.TypeId]strictypes.SemId{10: {0x02}},
		GlobalTypes: map[schema.TypeId]schema.GlobalStateSchema{1: {SemId: amountSem, MaxItems: 1}},
		OwnedTypes:  map[schema.TypeId]schema.OwnedStateSchema{2: {SemId: amountSem}},
		Transitions: map[schema.TypeId]schema.TransitionSchema{
			4: {OwnedTypes: []schema.TypeId{2}, GlobalTypes: []schema.TypeId{1}, MetaTypes: []schema.TypeId{10}},
		},
	}
	i := &iface.Interface{DefaultAssignment: "ownership", DefaultTransition: "transfer"}
	im := &iface.IfaceImpl{
		SchemaId:    s.Codex.CodexId,
		Metadata:    map[string]schema.TypeId{"memo": 10},
		Global:      map[string]schema.TypeId{"supply": 1},
		Assignments: map[string]schema.TypeId{"ownership": 2},
		Transitions: map[string]schema.TypeId{"transfer": 4},
	}
	ts := strictypes.NewTypeSystem()
	ts.Register(strictypes.SemId{0x01}, strictypes.TypeDescriptor{Name: "amount", Prim: strictypes.PrimU64})
	ts.Register(strictypes.SemId{0x02}, strictypes.TypeDescriptor{Name: "memo", Prim: strictypes.PrimBytes, Confined: true, MaxLen: 64})
	return s, i, im, ts
}

func u64(v uint64) []byte { return statecalc.U64Amount{}.Encode(v) }

func TestContractBuilderIssuesGenesis(t *testing.T) {
	s, i, im, ts := testFixture()
	b, err := NewContractBuilder(s, i, im, ts, "issuer-x")
	if err != nil {
		t.Fatalf("NewContractBuilder: %v", err)
	}

	if _, err = b.AddMetadata("memo", []byte("hello")); err != nil {
		t.Fatalf("AddMetadata: %v", err)
	}
	if _, err = b.AddGlobalState("supply", u64(1000)); err != nil {
		t.Fatalf("AddGlobalState: %v", err)
	}
	if _, err = b.AddOwnedStateRaw(2, seal.TokenSeal([32]byte{0x01}), u64(1000)); err != nil {
		t.Fatalf("AddOwnedStateRaw: %v", err)
	}

	g, err := b.IssueContractDet(1700000000)
	if err != nil {
		t.Fatalf("IssueContractDet: %v", err)
	}
	if g.Issuer != "issuer-x" || g.Timestamp != 1700000000 {
		t.Fatalf("unexpected genesis: %+v", g)
	}
	if len(g.Globals[1]) != 1 || len(g.Assigns[2]) != 1 {
		t.Fatalf("expected state carried through: %+v", g)
	}

	if _, err := b.AddMetadata("memo", []byte("again")); err == nil {
		t.Fatal("expected ErrAlreadyComplete after issuance")
	}
}

func TestContractBuilderGlobalStateMaxItems(t *testing.T) {
	s, i, im, ts := testFixture()
	b, err := NewContractBuilder(s, i, im, ts, "issuer-x")
	if err != nil {
		t.Fatalf("NewContractBuilder: %v", err)
	}
	if _, err := b.AddGlobalState("supply", u64(1)); err != nil {
		t.Fatalf("first AddGlobalState: %v", err)
	}
	if _, err := b.AddGlobalState("supply", u64(2)); err == nil {
		t.Fatal("expected ErrConfinement exceeding MaxItems=1")
	}
}

func TestContractBuilderLayer1Limits(t *testing.T) {
	s, i, im, ts := testFixture()
	b, _ := NewContractBuilder(s, i, im, ts, "issuer-x")

	if _, err := b.AddLayer1("liquid"); err != nil {
		t.Fatalf("AddLayer1: %v", err)
	}
	if _, err := b.AddLayer1("other-chain"); err != nil {
		t.Fatalf("AddLayer1: %v", err)
	}
	if _, err := b.AddLayer1("third-chain"); err == nil {
		t.Fatal("expected ErrTooManyLayers1")
	}
	if err := b.CheckLayer1("liquid"); err != nil {
		t.Fatalf("CheckLayer1 should pass for added layer: %v", err)
	}
	if err := b.CheckLayer1("unregistered"); err == nil {
		t.Fatal("expected ErrInvalidLayer1")
	}
}

func TestTransitionBuilderFulfillAndChange(t *testing.T) {
	s, i, im, ts := testFixture()
	abi := map[statecalc.TypeId]statecalc.AmountCodec{2: statecalc.U64Amount{}}
	contractId := [32]byte{0xAA}

	tb, err := DefaultTransition(contractId, s, i, im, ts, abi)
	if err != nil {
		t.Fatalf("DefaultTransition: %v", err)
	}

	if _, err := tb.AddInput(operation.Input{}, 2, u64(100)); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if _, residual, err := tb.FulfillOwnedState("ownership", seal.TokenSeal([32]byte{0x02}), u64(60)); err != nil {
		t.Fatalf("FulfillOwnedState: %v", err)
	} else if residual != nil {
		t.Fatalf("expected no residual when fully covered, got %x", residual)
	}
	if _, err := tb.AddOwnedStateChange("ownership", seal.TokenSeal([32]byte{0x03})); err != nil {
		t.Fatalf("AddOwnedStateChange: %v", err)
	}

	tr, err := tb.CompleteTransition()
	if err != nil {
		t.Fatalf("CompleteTransition: %v", err)
	}
	if len(tr.Metadata) != 0 {
		t.Fatalf("expected Transition.Metadata to always be empty, got %+v", tr.Metadata)
	}
	if len(tr.Assigns[2]) != 2 {
		t.Fatalf("expected fulfill + change assignments, got %d", len(tr.Assigns[2]))
	}
}

func TestBlankTransitionRejectsFulfill(t *testing.T) {
	s, i, im, ts := testFixture()
	contractId := [32]byte{0xBB}
	tb := BlankTransition(contractId, s, i, im, ts)

	if _, _, err := tb.FulfillOwnedState("ownership", seal.TokenSeal([32]byte{0x04}), u64(1)); err == nil {
		t.Fatal("expected FulfillOwnedState to fail on a blank transition")
	}
	if _, err := tb.AddOwnedStateBlank("ownership", seal.TokenSeal([32]byte{0x05}), u64(1)); err != nil {
		t.Fatalf("AddOwnedStateBlank: %v", err)
	}
	if _, err := tb.CompleteBlankTransition(); err != nil {
		t.Fatalf("CompleteBlankTransition: %v", err)
	}
}

func TestFulfillOwnedStateSurfacesResidual(t *testing.T) {
	s, i, im, ts := testFixture()
	abi := map[statecalc.TypeId]statecalc.AmountCodec{2: statecalc.U64Amount{}}
	contractId := [32]byte{0xCC}

	tb, err := DefaultTransition(contractId, s, i, im, ts, abi)
	if err != nil {
		t.Fatalf("DefaultTransition: %v", err)
	}
	if _, err := tb.AddInput(operation.Input{}, 2, u64(40)); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	_, residual, err := tb.FulfillOwnedState("ownership", seal.TokenSeal([32]byte{0x10}), u64(100))
	if err != nil {
		t.Fatalf("FulfillOwnedState: %v", err)
	}
	want := u64(60)
	if string(residual) != string(want) {
		t.Fatalf("expected residual %x, got %x", want, residual)
	}

	tr, err := tb.CompleteTransition()
	if err != nil {
		t.Fatalf("CompleteTransition: %v", err)
	}
	if len(tr.Assigns[2]) != 1 {
		t.Fatalf("expected the sufficient partial output to still be written, got %+v", tr.Assigns[2])
	}
}

func TestAddOwnedStateAttachesAttachId(t *testing.T) {
	s, i, im, ts := testFixture()
	b, err := NewContractBuilder(s, i, im, ts, "issuer-x")
	if err != nil {
		t.Fatalf("NewContractBuilder: %v", err)
	}
	attach := &strictypes.AttachId{0x07}
	if _, err := b.AddOwnedState("ownership", seal.TokenSeal([32]byte{0x01}), u64(1000), attach); err != nil {
		t.Fatalf("AddOwnedState: %v", err)
	}
	g, err := b.IssueContractDet(1700000000)
	if err != nil {
		t.Fatalf("IssueContractDet: %v", err)
	}
	states := g.Assigns[2]
	if len(states) != 1 || states[0].Attach == nil || *states[0].Attach != *attach {
		t.Fatalf("expected attach id carried through to the assignment, got %+v", states)
	}
}

func TestSerializeMethodsSkipTypify(t *testing.T) {
	s, i, im, ts := testFixture()
	b, err := NewContractBuilder(s, i, im, ts, "issuer-x")
	if err != nil {
		t.Fatalf("NewContractBuilder: %v", err)
	}
	if _, err := b.SerializeMetadata("memo", []byte("already-typed")); err != nil {
		t.Fatalf("SerializeMetadata: %v", err)
	}
	if _, err := b.SerializeGlobalState("supply", u64(42)); err != nil {
		t.Fatalf("SerializeGlobalState: %v", err)
	}
	if _, err := b.SerializeOwnedState("ownership", seal.TokenSeal([32]byte{0x06}), u64(7), nil); err != nil {
		t.Fatalf("SerializeOwnedState: %v", err)
	}
	g, err := b.IssueContractDet(1700000000)
	if err != nil {
		t.Fatalf("IssueContractDet: %v", err)
	}
	if len(g.Globals[1]) != 1 || len(g.Assigns[2]) != 1 || len(g.Metadata[10]) == 0 {
		t.Fatalf("expected serialized state carried through unchanged: %+v", g)
	}
}

func TestSerializeDebugRoundTripCatchesDrift(t *testing.T) {
	s, i, im, ts := testFixture()
	b, err := NewContractBuilder(s, i, im, ts, "issuer-x")
	if err != nil {
		t.Fatalf("NewContractBuilder: %v", err)
	}
	b.SetDebug(true)
	// "supply" is typed as a u64 amount (8 bytes); a 3-byte value fails
	// the debug-mode round trip through the schema's SemId.
	if _, err := b.SerializeGlobalState("supply", []byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected debug-mode round-trip Typify check to reject a malformed pre-typed value")
	}
}
