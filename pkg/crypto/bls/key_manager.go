// Copyright 2025 Certen Protocol
//
// Key management for the BLS key a witness co-signer uses to attest
// seal closures.

package bls

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// KeyManager handles BLS key loading and storage for one co-signer.
type KeyManager struct {
	keyPath    string
	privateKey *PrivateKey
	publicKey  *PublicKey
}

// NewKeyManager creates a key manager backed by keyPath.
func NewKeyManager(keyPath string) *KeyManager {
	return &KeyManager{keyPath: keyPath}
}

// LoadOrGenerateKey loads an existing key from keyPath, or generates
// and persists a new one if none exists.
func (km *KeyManager) LoadOrGenerateKey() error {
	if err := Initialize(); err != nil {
		return fmt.Errorf("initialize BLS: %w", err)
	}
	if km.keyPath != "" {
		if _, err := os.Stat(km.keyPath); err == nil {
			return km.LoadKey()
		}
	}
	return km.GenerateNewKey()
}

// LoadKey reads a hex-encoded private key from keyPath.
func (km *KeyManager) LoadKey() error {
	if km.keyPath == "" {
		return fmt.Errorf("no key path specified")
	}
	data, err := os.ReadFile(km.keyPath)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}
	keyBytes, err := hex.DecodeString(string(data))
	if err != nil {
		return fmt.Errorf("decode key hex: %w", err)
	}
	km.privateKey, err = PrivateKeyFromBytes(keyBytes)
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}
	km.publicKey = km.privateKey.PublicKey()
	return nil
}

// GenerateNewKey generates a fresh key pair and persists it if a path
// was given.
func (km *KeyManager) GenerateNewKey() error {
	var err error
	km.privateKey, km.publicKey, err = GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("generate key pair: %w", err)
	}
	if km.keyPath != "" {
		return km.SaveKey()
	}
	return nil
}

// GenerateFromSealId derives a deterministic key from a seal-signer
// identity, so a witness co-signer's key is reproducible across
// restarts without persisting it.
func (km *KeyManager) GenerateFromSealId(signerId string) error {
	if err := Initialize(); err != nil {
		return fmt.Errorf("initialize BLS: %w", err)
	}
	seed := sha256.Sum256([]byte(fmt.Sprintf("RGB_WITNESS_KEY_V1:%s", signerId)))
	var sk privateKeyFromSeed
	var err error
	km.privateKey, err = sk.from(seed[:])
	if err != nil {
		return fmt.Errorf("generate from seed: %w", err)
	}
	km.publicKey = km.privateKey.PublicKey()
	return nil
}

type privateKeyFromSeed struct{}

func (privateKeyFromSeed) from(seed []byte) (*PrivateKey, error) {
	if len(seed) < 32 {
		return nil, fmt.Errorf("seed must be at least 32 bytes")
	}
	hashed := sha256.Sum256(seed)
	return PrivateKeyFromBytes(hashed[:])
}

// SaveKey writes the private key to keyPath hex-encoded, 0600.
func (km *KeyManager) SaveKey() error {
	if km.keyPath == "" {
		return fmt.Errorf("no key path specified")
	}
	if km.privateKey == nil {
		return fmt.Errorf("no private key to save")
	}
	dir := filepath.Dir(km.keyPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	keyHex := hex.EncodeToString(km.privateKey.Bytes())
	if err := os.WriteFile(km.keyPath, []byte(keyHex), 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// PrivateKey returns the loaded private key, nil if none is loaded.
func (km *KeyManager) PrivateKey() *PrivateKey { return km.privateKey }

// PublicKey returns the loaded public key, nil if none is loaded.
func (km *KeyManager) PublicKey() *PublicKey { return km.publicKey }

// PublicKeyHex returns the public key hex-encoded, "" if none loaded.
func (km *KeyManager) PublicKeyHex() string {
	if km.publicKey == nil {
		return ""
	}
	return hex.EncodeToString(km.publicKey.Bytes())
}

// SignWithDomain signs message under domain using the loaded key.
func (km *KeyManager) SignWithDomain(message []byte, domain string) (*Signature, error) {
	if km.privateKey == nil {
		return nil, fmt.Errorf("no private key loaded")
	}
	return km.privateKey.SignWithDomain(message, domain), nil
}
