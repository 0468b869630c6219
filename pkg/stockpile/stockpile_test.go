// Copyright 2025 Certen Protocol

package stockpile

import (
	"bytes"
	"testing"

	"github.com/certen/rgb-stockpile/pkg/crypto/bls"
	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		GlobalTypes: map[schema.TypeId]schema.GlobalStateSchema{1: {SemId: strictypes.SemId{0x01}}},
		OwnedTypes:  map[schema.TypeId]schema.OwnedStateSchema{2: {SemId: strictypes.SemId{0x02}}},
		Transitions: map[schema.TypeId]schema.TransitionSchema{
			4: {OwnedTypes: []schema.TypeId{2}, Method: "transfer"},
		},
	}
}

func issueFixture(t *testing.T) (*Stockpile, seal.XOutpoint) {
	t.Helper()
	out := seal.BitcoinOutpoint(seal.NewOutpoint([32]byte{0xAA}, 0))
	g := operation.Genesis{
		Issuer:    "issuer-x",
		Timestamp: 1700000000,
		Globals:   operation.GlobalState{1: {[]byte("supply-1000")}},
		Assigns: operation.Assignments{
			2: {{Seal: seal.AltSeal(out), Data: []byte("owner-a")}},
		},
	}
	sp, err := Issue(NewMemKV(), g, testSchema(), strictypes.SemId{0x02}, nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return sp, out
}

func TestIssueAndState(t *testing.T) {
	sp, _ := issueFixture(t)

	st, err := sp.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if len(st.Globals[1]) != 1 {
		t.Fatalf("expected one global entry, got %+v", st.Globals)
	}
	if len(st.Unspent[2]) != 1 {
		t.Fatalf("expected one unspent assignment, got %+v", st.Unspent)
	}
}

func TestSealResolvesToGenesisOpout(t *testing.T) {
	sp, out := issueFixture(t)
	token := seal.AuthTokenOf(out)

	opout, err := sp.Seal(token)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if opout.Opid != sp.ContractId() || opout.Type != 2 || opout.No != 0 {
		t.Fatalf("unexpected opout: %+v", opout)
	}
}

func closingWitness(t *testing.T, opid strictypes.Opid, out seal.XOutpoint) seal.Witness {
	t.Helper()
	sk, _, err := bls.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	return seal.Witness{Client: seal.SignWitness(sk, opid, out)}
}

func TestApplyTransitionSpendsInput(t *testing.T) {
	sp, out := issueFixture(t)
	token := seal.AuthTokenOf(out)
	opout, err := sp.Seal(token)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	changeOut := seal.BitcoinOutpoint(seal.NewOutpoint([32]byte{0xBB}, 1))
	tr := operation.Transition{
		ContractId: sp.ContractId(),
		TypeId:     4,
		Nonce:      1,
		Metadata:   operation.Metadata{},
		Inputs:     []operation.Input{{Opout: opout}},
		Assigns: operation.Assignments{
			2: {{Seal: seal.AltSeal(changeOut), Data: []byte("owner-b")}},
		},
	}
	w := closingWitness(t, opout.Opid, out)
	opid, err := sp.ApplyTransition(tr, []seal.Witness{w})
	if err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}

	if _, err := sp.ApplyTransition(tr, []seal.Witness{w}); err == nil {
		t.Fatal("expected re-applying the same inputs to fail (double spend)")
	}

	st, err := sp.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if len(st.Unspent[2]) != 1 || st.Unspent[2][0].Opout.Opid != opid {
		t.Fatalf("expected genesis output spent, only transition output live: %+v", st.Unspent)
	}
}

func TestApplyTransitionRejectsUnclosedInput(t *testing.T) {
	sp, out := issueFixture(t)
	token := seal.AuthTokenOf(out)
	opout, err := sp.Seal(token)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	changeOut := seal.BitcoinOutpoint(seal.NewOutpoint([32]byte{0xCC}, 1))
	tr := operation.Transition{
		ContractId: sp.ContractId(),
		TypeId:     4,
		Nonce:      1,
		Inputs:     []operation.Input{{Opout: opout}},
		Assigns: operation.Assignments{
			2: {{Seal: seal.AltSeal(changeOut), Data: []byte("owner-b")}},
		},
	}
	if _, err := sp.ApplyTransition(tr, nil); err == nil {
		t.Fatal("expected ApplyTransition to reject a transition with no closing witness")
	}

	other := seal.BitcoinOutpoint(seal.NewOutpoint([32]byte{0xDD}, 2))
	mismatched := closingWitness(t, opout.Opid, other)
	if _, err := sp.ApplyTransition(tr, []seal.Witness{mismatched}); err == nil {
		t.Fatal("expected ApplyTransition to reject a witness closing a different outpoint")
	}
}

func TestApplyTransitionRejectsUndeclaredTransitionType(t *testing.T) {
	sp, out := issueFixture(t)
	token := seal.AuthTokenOf(out)
	opout, err := sp.Seal(token)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	changeOut := seal.BitcoinOutpoint(seal.NewOutpoint([32]byte{0xEE}, 1))
	tr := operation.Transition{
		ContractId: sp.ContractId(),
		TypeId:     99,
		Inputs:     []operation.Input{{Opout: opout}},
		Assigns: operation.Assignments{
			2: {{Seal: seal.AltSeal(changeOut), Data: []byte("owner-b")}},
		},
	}
	w := closingWitness(t, opout.Opid, out)
	if _, err := sp.ApplyTransition(tr, []seal.Witness{w}); err == nil {
		t.Fatal("expected ApplyTransition to reject an undeclared transition type")
	}
}

func TestConsignConsumeRoundTrip(t *testing.T) {
	sp, out := issueFixture(t)
	token := seal.AuthTokenOf(out)

	sk, _, err := bls.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	w := seal.SignWitness(sk, sp.ContractId(), out)
	if err := sp.Attest(sp.ContractId(), 0, seal.Witness{Client: w}); err != nil {
		t.Fatalf("Attest: %v", err)
	}

	var buf bytes.Buffer
	if err := sp.Consign([]strictypes.AuthToken{token}, &buf); err != nil {
		t.Fatalf("Consign: %v", err)
	}

	sp2, err := Issue(NewMemKV(), sp.Articles().Genesis, testSchema(), sp.Articles().IfaceId, nil)
	if err != nil {
		t.Fatalf("seed receiver: %v", err)
	}
	if err := sp2.Consume(&buf, nil); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	st1, _ := sp.State()
	st2, _ := sp2.State()
	if len(st1.Unspent[2]) != len(st2.Unspent[2]) {
		t.Fatalf("state mismatch after round trip: %+v vs %+v", st1.Unspent, st2.Unspent)
	}
}

func TestConsumeRejectsBadMagic(t *testing.T) {
	r := bytes.NewReader([]byte("NOT RGB CONSIGNMENT AT ALL"))
	if _, err := ReadEnvelope(r); err == nil {
		t.Fatal("expected ErrUnrecognizedMagic")
	}
}
