// Copyright 2025 Certen Protocol

package seal

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/certen/rgb-stockpile/pkg/crypto/bls"
)

func TestEitherSealExplicitAuthToken(t *testing.T) {
	out := NewOutpoint(chainhash.Hash{0x01}, 0)
	x := BitcoinOutpoint(out)
	e := AltSeal(x)

	if !e.IsExplicit() {
		t.Fatal("AltSeal should report IsExplicit")
	}
	tok, err := e.AuthTokenValue()
	if err != nil {
		t.Fatalf("AuthTokenValue: %v", err)
	}
	if tok == (AuthToken{}) {
		t.Fatal("expected non-zero auth token")
	}

	got, err := e.ToExplicit()
	if err != nil {
		t.Fatalf("ToExplicit: %v", err)
	}
	if !got.IsBitcoin() {
		t.Fatal("expected Bitcoin layer preserved")
	}
}

func TestEitherSealTokenOnly(t *testing.T) {
	tok := AuthToken{0x42}
	e := TokenSeal(tok)
	if e.IsExplicit() {
		t.Fatal("TokenSeal should not report IsExplicit")
	}
	got, err := e.AuthTokenValue()
	if err != nil || got != tok {
		t.Fatalf("AuthTokenValue = %v, %v; want %v, nil", got, err, tok)
	}
	if _, err := e.ToExplicit(); err == nil {
		t.Fatal("expected error revealing a token-only seal")
	}
}

func TestWitnessSignAndVerify(t *testing.T) {
	sk, _, err := bls.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	out := BitcoinOutpoint(NewOutpoint(chainhash.Hash{0x09}, 2))
	opid := [32]byte{0x07}

	w := SignWitness(sk, opid, out)
	if err := w.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	w.Signature[0] ^= 0xff
	if err := w.Verify(); err == nil {
		t.Fatal("expected verification failure for tampered signature")
	}
}

func TestAggregateWitnesses(t *testing.T) {
	opid := [32]byte{0x11}
	out := BitcoinOutpoint(NewOutpoint(chainhash.Hash{0x22}, 1))

	var witnesses []ClientWitness
	for i := 0; i < 3; i++ {
		sk, _, err := bls.GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair: %v", err)
		}
		witnesses = append(witnesses, SignWitness(sk, opid, out))
	}

	agg, err := AggregateWitnesses(witnesses)
	if err != nil {
		t.Fatalf("AggregateWitnesses: %v", err)
	}
	if err := agg.Verify(); err != nil {
		t.Fatalf("aggregate witness failed to verify: %v", err)
	}
}
