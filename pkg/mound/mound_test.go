// Copyright 2025 Certen Protocol

package mound

import (
	"bytes"
	"testing"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/schema"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/stockpile"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		GlobalTypes: map[schema.TypeId]schema.GlobalStateSchema{1: {SemId: strictypes.SemId{0x01}, MaxItems: 10}},
		OwnedTypes:  map[schema.TypeId]schema.OwnedStateSchema{2: {SemId: strictypes.SemId{0x02}}},
	}
}

func TestIssueEnvGating(t *testing.T) {
	m := New("bitcoin", true, nil)
	m.RegisterSchema(testSchema())

	params := schema.IssueParams{Core: schema.CoreParams{SchemaId: strictypes.CodexId{}, Consensus: "liquid", Testnet: true}}
	if _, err := m.Issue(params); err == nil {
		t.Fatal("expected ErrConsensusMismatch")
	}

	params.Core.Consensus = "bitcoin"
	params.Core.Testnet = false
	if _, err := m.Issue(params); err == nil {
		t.Fatal("expected ErrTestnetMismatch")
	}
}

func TestIssueUnknownCodex(t *testing.T) {
	m := New("bitcoin", true, nil)
	params := schema.IssueParams{Core: schema.CoreParams{SchemaId: strictypes.CodexId{0xFF}, Consensus: "bitcoin", Testnet: true}}
	if _, err := m.Issue(params); err == nil {
		t.Fatal("expected ErrUnknownCodex")
	}
}

func TestIssueConsignConsumeRoundTrip(t *testing.T) {
	sender := New("bitcoin", true, nil)
	sender.RegisterSchema(testSchema())

	out := seal.BitcoinOutpoint(seal.NewOutpoint([32]byte{0x01}, 0))
	params := schema.IssueParams{
		Core:   schema.CoreParams{SchemaId: strictypes.CodexId{}, Consensus: "bitcoin", Testnet: true, Issuer: "issuer-x", Timestamp: 1700000000},
		Global: map[schema.TypeId][][]byte{1: {[]byte("supply")}},
		Owned:  map[schema.TypeId][]operation.AssignmentState{2: {{Seal: seal.AltSeal(out), Data: []byte("state")}}},
	}
	contractId, err := sender.Issue(params)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	senderSp, err := sender.Select(contractId)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	token := seal.AuthTokenOf(out)

	var buf bytes.Buffer
	if err := sender.Consign(contractId, []strictypes.AuthToken{token}, &buf); err != nil {
		t.Fatalf("Consign: %v", err)
	}

	a := senderSp.Articles()
	receiverSp, err := stockpile.Issue(stockpile.NewMemKV(), a.Genesis, testSchema(), a.IfaceId, nil)
	if err != nil {
		t.Fatalf("seed receiver: %v", err)
	}
	receiver := New("bitcoin", true, nil)
	receiver.RegisterSchema(testSchema())
	receiver.SeedContract(receiverSp)

	if err := receiver.Consume(&buf, nil); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	st, err := receiverSp.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if len(st.Unspent[2]) != 1 {
		t.Fatalf("expected one unspent assignment, got %+v", st.Unspent)
	}
}

func TestConsumeRejectsUnknownContract(t *testing.T) {
	m := New("bitcoin", true, nil)
	var buf bytes.Buffer
	if err := stockpile.WriteEnvelope(&buf, strictypes.ContractId{0xEE}); err != nil {
		t.Fatalf("write envelope: %v", err)
	}
	if err := m.Consume(&buf, nil); err == nil {
		t.Fatal("expected ErrUnknownContract")
	}
}
