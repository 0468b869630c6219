// Copyright 2025 Certen Protocol

package seal

import (
	"fmt"

	"github.com/certen/rgb-stockpile/pkg/crypto/bls"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// ClientWitness is the off-chain attestation that an operation's
// inputs were closed over a given set of outputs: one or more
// co-signer BLS signatures over (opid, outpoint).
type ClientWitness struct {
	Opid      strictypes.Opid
	Outpoint  XOutpoint
	Signature []byte // aggregated BLS signature, bls.SignatureSize bytes
	Signers   [][]byte
}

// PublishedWitness is the minimal on-chain reference a resolver
// confirms: the transaction and block height the client witness's
// outpoint was actually spent in.
type PublishedWitness struct {
	Txid   [32]byte
	Height uint32
	Time   int64
}

// Witness is the (client, published) pair spec.md §3 names: the
// off-chain attestation plus its on-chain confirmation, once known.
type Witness struct {
	Client    ClientWitness
	Published *PublishedWitness
}

// WitnessMessage builds the canonical message a co-signer's BLS
// signature commits to for a given opid/outpoint pair.
func WitnessMessage(opid strictypes.Opid, out XOutpoint) []byte {
	w := strictypes.NewWriter()
	_ = w.WriteBytes(opid[:])
	_ = w.WriteU8(uint8(out.layer))
	_ = w.WriteBytes(out.point.inner.Hash[:])
	_ = w.WriteU32(out.point.inner.Index)
	return w.Bytes()
}

// SignWitness produces a ClientWitness for opid/outpoint signed by a
// single co-signer key.
func SignWitness(sk *bls.PrivateKey, opid strictypes.Opid, out XOutpoint) ClientWitness {
	msg := WitnessMessage(opid, out)
	sig := sk.SignWithDomain(msg, bls.DomainWitness)
	return ClientWitness{
		Opid:      opid,
		Outpoint:  out,
		Signature: sig.Bytes(),
		Signers:   [][]byte{sk.PublicKey().Bytes()},
	}
}

// AggregateWitnesses combines witnesses attesting the same opid and
// outpoint from several independent co-signers into one aggregate
// ClientWitness.
func AggregateWitnesses(witnesses []ClientWitness) (ClientWitness, error) {
	if len(witnesses) == 0 {
		return ClientWitness{}, fmt.Errorf("seal: no witnesses to aggregate")
	}
	first := witnesses[0]
	sigs := make([]*bls.Signature, 0, len(witnesses))
	var signers [][]byte
	for _, w := range witnesses {
		if w.Opid != first.Opid || w.Outpoint != first.Outpoint {
			return ClientWitness{}, fmt.Errorf("seal: witness opid/outpoint mismatch")
		}
		sig, err := bls.SignatureFromBytes(w.Signature)
		if err != nil {
			return ClientWitness{}, fmt.Errorf("seal: invalid witness signature: %w", err)
		}
		sigs = append(sigs, sig)
		signers = append(signers, w.Signers...)
	}
	agg, err := bls.AggregateSignatures(sigs)
	if err != nil {
		return ClientWitness{}, fmt.Errorf("seal: %w", err)
	}
	return ClientWitness{
		Opid:      first.Opid,
		Outpoint:  first.Outpoint,
		Signature: agg.Bytes(),
		Signers:   signers,
	}, nil
}

// Verify checks the (possibly aggregated) client witness's signature
// against its claimed set of signer public keys.
func (w ClientWitness) Verify() error {
	sig, err := bls.SignatureFromBytes(w.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	pks := make([]*bls.PublicKey, 0, len(w.Signers))
	for _, raw := range w.Signers {
		pk, err := bls.PublicKeyFromBytes(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		pks = append(pks, pk)
	}
	msg := WitnessMessage(w.Opid, w.Outpoint)
	if !bls.VerifyAggregateSignatureWithDomain(sig, pks, msg, bls.DomainWitness) {
		return ErrInvalidSignature
	}
	return nil
}
