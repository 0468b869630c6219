// Copyright 2025 Certen Protocol

package bls

import "testing"

func TestSignVerifyWithDomain(t *testing.T) {
	sk, pk, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	msg := []byte("opid:outpoint")
	sig := sk.SignWithDomain(msg, DomainWitness)

	if !pk.VerifyWithDomain(sig, msg, DomainWitness) {
		t.Fatal("signature did not verify against correct message/domain")
	}
	if pk.VerifyWithDomain(sig, []byte("different message"), DomainWitness) {
		t.Fatal("signature verified against wrong message")
	}
	if pk.VerifyWithDomain(sig, msg, DomainConsign) {
		t.Fatal("signature verified under wrong domain tag")
	}
}

func TestAggregateSignatures(t *testing.T) {
	const n = 3
	msg := []byte("shared witness message")
	sks := make([]*PrivateKey, n)
	pks := make([]*PublicKey, n)
	sigs := make([]*Signature, n)
	for i := 0; i < n; i++ {
		sk, pk, err := GenerateKeyPair()
		if err != nil {
			t.Fatalf("GenerateKeyPair[%d]: %v", i, err)
		}
		sks[i], pks[i] = sk, pk
		sigs[i] = sk.SignWithDomain(msg, DomainWitness)
	}

	aggSig, err := AggregateSignatures(sigs)
	if err != nil {
		t.Fatalf("AggregateSignatures: %v", err)
	}
	if !VerifyAggregateSignatureWithDomain(aggSig, pks, msg, DomainWitness) {
		t.Fatal("aggregate signature did not verify")
	}
}

func TestAggregateSignaturesRejectsEmpty(t *testing.T) {
	if _, err := AggregateSignatures(nil); err == nil {
		t.Fatal("expected error aggregating zero signatures")
	}
}

func TestKeyManagerGenerateFromSealIdIsDeterministic(t *testing.T) {
	var km1, km2 KeyManager
	if err := km1.GenerateFromSealId("signer-1"); err != nil {
		t.Fatalf("GenerateFromSealId: %v", err)
	}
	if err := km2.GenerateFromSealId("signer-1"); err != nil {
		t.Fatalf("GenerateFromSealId: %v", err)
	}
	if km1.PublicKeyHex() != km2.PublicKeyHex() {
		t.Fatal("same signer id produced different keys")
	}

	var km3 KeyManager
	if err := km3.GenerateFromSealId("signer-2"); err != nil {
		t.Fatalf("GenerateFromSealId: %v", err)
	}
	if km1.PublicKeyHex() == km3.PublicKeyHex() {
		t.Fatal("different signer ids produced the same key")
	}
}

func TestKeyManagerSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keyPath := dir + "/witness.key"

	km := NewKeyManager(keyPath)
	if err := km.LoadOrGenerateKey(); err != nil {
		t.Fatalf("LoadOrGenerateKey: %v", err)
	}
	wantPub := km.PublicKeyHex()

	loaded := NewKeyManager(keyPath)
	if err := loaded.LoadOrGenerateKey(); err != nil {
		t.Fatalf("LoadOrGenerateKey (reload): %v", err)
	}
	if loaded.PublicKeyHex() != wantPub {
		t.Fatalf("reloaded key mismatch: got %s, want %s", loaded.PublicKeyHex(), wantPub)
	}
}
