// Copyright 2025 Certen Protocol
//
// BLS12-381 signatures (pure Go), used to sign the client witness that
// attests a single-use seal has been closed. Wraps gnark-crypto's
// BLS12-381 curve arithmetic.

package bls

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var (
	initOnce sync.Once

	g1Gen bls12381.G1Affine
	g2Gen bls12381.G2Affine
)

// Domain separation tags for the messages a client witness signs.
const (
	DomainWitness = "RGB_WITNESS_V1"
	DomainConsign = "RGB_CONSIGN_V1"
)

// Size constants for the wire-encoded key/signature forms.
const (
	PrivateKeySize = 32
	PublicKeySize  = 96
	SignatureSize  = 48
)

// Initialize loads the curve's generator points. Safe to call more
// than once; only the first call does any work.
func Initialize() error {
	initOnce.Do(func() {
		_, _, g1GenPoint, g2GenPoint := bls12381.Generators()
		g1Gen = g1GenPoint
		g2Gen = g2GenPoint
	})
	return nil
}

// PrivateKey is a BLS12-381 scalar in Fr.
type PrivateKey struct {
	scalar fr.Element
}

// PublicKey is a point on G2.
type PublicKey struct {
	point bls12381.G2Affine
}

// Signature is a point on G1.
type Signature struct {
	point bls12381.G1Affine
}

// GenerateKeyPair generates a key pair from a cryptographically secure
// random source.
func GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	if err := Initialize(); err != nil {
		return nil, nil, fmt.Errorf("initialize BLS: %w", err)
	}
	var sk fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return nil, nil, fmt.Errorf("generate random scalar: %w", err)
	}
	priv := &PrivateKey{scalar: sk}
	return priv, priv.PublicKey(), nil
}

// PrivateKeyFromBytes deserializes a private key.
func PrivateKeyFromBytes(data []byte) (*PrivateKey, error) {
	if err := Initialize(); err != nil {
		return nil, fmt.Errorf("initialize BLS: %w", err)
	}
	if len(data) != PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: got %d, want %d", len(data), PrivateKeySize)
	}
	var sk fr.Element
	sk.SetBytes(data)
	return &PrivateKey{scalar: sk}, nil
}

// PublicKeyFromBytes deserializes a public key.
func PublicKeyFromBytes(data []byte) (*PublicKey, error) {
	if err := Initialize(); err != nil {
		return nil, fmt.Errorf("initialize BLS: %w", err)
	}
	var pk bls12381.G2Affine
	if _, err := pk.SetBytes(data); err != nil {
		return nil, fmt.Errorf("deserialize public key: %w", err)
	}
	return &PublicKey{point: pk}, nil
}

// SignatureFromBytes deserializes a signature.
func SignatureFromBytes(data []byte) (*Signature, error) {
	if err := Initialize(); err != nil {
		return nil, fmt.Errorf("initialize BLS: %w", err)
	}
	var sig bls12381.G1Affine
	if _, err := sig.SetBytes(data); err != nil {
		return nil, fmt.Errorf("deserialize signature: %w", err)
	}
	return &Signature{point: sig}, nil
}

// Bytes returns the raw scalar.
func (sk *PrivateKey) Bytes() []byte {
	b := sk.scalar.Bytes()
	return b[:]
}

// Hex returns the private key hex-encoded.
func (sk *PrivateKey) Hex() string { return hex.EncodeToString(sk.Bytes()) }

// PublicKey derives pk = sk * G2.
func (sk *PrivateKey) PublicKey() *PublicKey {
	var pk bls12381.G2Affine
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	pk.ScalarMultiplication(&g2Gen, &skBig)
	return &PublicKey{point: pk}
}

// SignWithDomain signs message with domain separation, as every client
// witness signature must be (opid||outpoint under DomainWitness).
func (sk *PrivateKey) SignWithDomain(message []byte, domain string) *Signature {
	domainMsg := computeDomainMessage(domain, message)
	h := hashToG1(domainMsg)
	var sig bls12381.G1Affine
	var skBig big.Int
	sk.scalar.BigInt(&skBig)
	sig.ScalarMultiplication(&h, &skBig)
	return &Signature{point: sig}
}

// Bytes returns the compressed G2 point.
func (pk *PublicKey) Bytes() []byte {
	b := pk.point.Bytes()
	return b[:]
}

// VerifyWithDomain checks e(sig, G2) == e(H(domain||msg), pk).
func (pk *PublicKey) VerifyWithDomain(sig *Signature, message []byte, domain string) bool {
	domainMsg := computeDomainMessage(domain, message)
	h := hashToG1(domainMsg)

	var negPk bls12381.G2Affine
	negPk.Neg(&pk.point)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{sig.point, h},
		[]bls12381.G2Affine{g2Gen, negPk},
	)
	return err == nil && ok
}

// Bytes returns the compressed G1 point.
func (sig *Signature) Bytes() []byte {
	b := sig.point.Bytes()
	return b[:]
}

// AggregateSignatures sums signatures on G1, used when a seal's
// closing is co-witnessed by several validators.
func AggregateSignatures(signatures []*Signature) (*Signature, error) {
	if len(signatures) == 0 {
		return nil, errors.New("bls: no signatures to aggregate")
	}
	var agg bls12381.G1Jac
	agg.FromAffine(&signatures[0].point)
	for _, s := range signatures[1:] {
		var jac bls12381.G1Jac
		jac.FromAffine(&s.point)
		agg.AddAssign(&jac)
	}
	var result bls12381.G1Affine
	result.FromJacobian(&agg)
	return &Signature{point: result}, nil
}

// AggregatePublicKeys sums public keys on G2.
func AggregatePublicKeys(publicKeys []*PublicKey) (*PublicKey, error) {
	if len(publicKeys) == 0 {
		return nil, errors.New("bls: no public keys to aggregate")
	}
	var agg bls12381.G2Jac
	agg.FromAffine(&publicKeys[0].point)
	for _, p := range publicKeys[1:] {
		var jac bls12381.G2Jac
		jac.FromAffine(&p.point)
		agg.AddAssign(&jac)
	}
	var result bls12381.G2Affine
	result.FromJacobian(&agg)
	return &PublicKey{point: result}, nil
}

// VerifyAggregateSignatureWithDomain verifies an aggregated signature
// against the aggregate of publicKeys, all over the same message.
func VerifyAggregateSignatureWithDomain(aggSig *Signature, publicKeys []*PublicKey, message []byte, domain string) bool {
	if len(publicKeys) == 0 {
		return false
	}
	aggPk, err := AggregatePublicKeys(publicKeys)
	if err != nil {
		return false
	}
	return aggPk.VerifyWithDomain(aggSig, message, domain)
}

func hashToG1(message []byte) bls12381.G1Affine {
	h := sha256.New()
	h.Write([]byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_"))
	h.Write(message)

	var counter uint64
	for {
		h2 := sha256.New()
		h2.Write(h.Sum(nil))
		binary.Write(h2, binary.BigEndian, counter)
		hash := h2.Sum(nil)

		var point bls12381.G1Affine
		if _, err := point.SetBytes(hash); err == nil && !point.IsInfinity() {
			var scalar fr.Element
			scalar.SetBytes(hash)
			var scalarBig big.Int
			scalar.BigInt(&scalarBig)
			var result bls12381.G1Affine
			result.ScalarMultiplication(&g1Gen, &scalarBig)
			if !result.IsInfinity() {
				return result
			}
		}
		counter++
		if counter > 1000 {
			return g1Gen
		}
	}
}

func computeDomainMessage(domain string, message []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write(message)
	return h.Sum(nil)
}
