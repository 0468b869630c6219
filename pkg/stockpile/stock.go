// Copyright 2025 Certen Protocol

package stockpile

import (
	"fmt"
	"log"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

const (
	opTagGenesis    byte = 1
	opTagTransition byte = 2
)

// Stock is the append-only operation log: every genesis and transition
// a contract's history is built from, content-addressed by Opid.
type Stock struct {
	kv     KV
	logger *log.Logger
}

// NewStock wraps kv as an operation log.
func NewStock(kv KV) *Stock {
	return &Stock{kv: kv, logger: log.New(log.Writer(), "[Stock] ", log.LstdFlags)}
}

// PutGenesis stores a genesis operation, keyed by its own opid.
func (s *Stock) PutGenesis(opid strictypes.Opid, g operation.Genesis) error {
	b, err := operation.Encode(&g)
	if err != nil {
		return err
	}
	return s.putTagged(opid, opTagGenesis, b)
}

// PutTransition stores a transition operation, keyed by its opid.
func (s *Stock) PutTransition(opid strictypes.Opid, t operation.Transition) error {
	b, err := operation.Encode(&t)
	if err != nil {
		return err
	}
	return s.putTagged(opid, opTagTransition, b)
}

func (s *Stock) putTagged(opid strictypes.Opid, tag byte, payload []byte) error {
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, tag)
	buf = append(buf, payload...)
	if err := s.kv.Set(opKey(opid), buf); err != nil {
		return err
	}
	s.logger.Printf("stored operation opid=%x", opid)
	return nil
}

// GetGenesis loads the genesis operation stored at opid.
func (s *Stock) GetGenesis(opid strictypes.Opid) (operation.Genesis, error) {
	tag, payload, err := s.getTagged(opid)
	if err != nil {
		return operation.Genesis{}, err
	}
	if tag != opTagGenesis {
		return operation.Genesis{}, fmt.Errorf("%w: opid %x is not a genesis", ErrDecode, opid)
	}
	return operation.DecodeGenesis(payload)
}

// GetTransition loads the transition operation stored at opid.
func (s *Stock) GetTransition(opid strictypes.Opid) (operation.Transition, error) {
	tag, payload, err := s.getTagged(opid)
	if err != nil {
		return operation.Transition{}, err
	}
	if tag != opTagTransition {
		return operation.Transition{}, fmt.Errorf("%w: opid %x is not a transition", ErrDecode, opid)
	}
	return operation.DecodeTransition(payload)
}

// Has reports whether an operation is recorded for opid.
func (s *Stock) Has(opid strictypes.Opid) (bool, error) {
	return s.kv.Has(opKey(opid))
}

func (s *Stock) getTagged(opid strictypes.Opid) (byte, []byte, error) {
	raw, err := s.kv.Get(opKey(opid))
	if err != nil {
		return 0, nil, err
	}
	if raw == nil {
		return 0, nil, fmt.Errorf("%w: opid %x", ErrUnknownContract, opid)
	}
	if len(raw) < 1 {
		return 0, nil, fmt.Errorf("%w: empty operation record", ErrDecode)
	}
	return raw[0], raw[1:], nil
}
