// Copyright 2025 Certen Protocol

package stockpile

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/certen/rgb-stockpile/pkg/operation"
	"github.com/certen/rgb-stockpile/pkg/seal"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// Pile is the seal and witness store: it maps each AuthToken to the
// operation output it commits to, and each operation to the witnesses
// that have closed its seals.
type Pile struct {
	kv     KV
	logger *log.Logger
}

// NewPile wraps kv as a seal/witness store.
func NewPile(kv KV) *Pile {
	return &Pile{kv: kv, logger: log.New(log.Writer(), "[Pile] ", log.LstdFlags)}
}

// RegisterSeal records that authToken commits to opout, so a later
// FulfillOwnedState or resolver lookup can map a closed seal back to
// the assignment it authorizes spending.
func (p *Pile) RegisterSeal(authToken strictypes.AuthToken, opout operation.Opout) error {
	b, err := json.Marshal(opout)
	if err != nil {
		return fmt.Errorf("pile: encode opout: %w", err)
	}
	if err := p.kv.Set(authTokenKey(authToken), b); err != nil {
		return err
	}
	p.logger.Printf("registered seal token=%x -> opid=%x", authToken, opout.Opid)
	return nil
}

// ResolveSeal returns the operation output authToken commits to.
func (p *Pile) ResolveSeal(authToken strictypes.AuthToken) (operation.Opout, error) {
	raw, err := p.kv.Get(authTokenKey(authToken))
	if err != nil {
		return operation.Opout{}, err
	}
	if raw == nil {
		return operation.Opout{}, fmt.Errorf("%w: token %x", ErrUnknownSeal, authToken)
	}
	var out operation.Opout
	if err := json.Unmarshal(raw, &out); err != nil {
		return operation.Opout{}, fmt.Errorf("%w: decode opout: %v", ErrDecode, err)
	}
	return out, nil
}

// RecordWitness appends a witness closing one of opid's seals at the
// given index (mirroring the order AddInput/FulfillOwnedState attached
// them).
func (p *Pile) RecordWitness(opid strictypes.Opid, index uint16, w seal.Witness) error {
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("pile: encode witness: %w", err)
	}
	if err := p.kv.Set(witnessKey(opid, index), b); err != nil {
		return err
	}
	p.logger.Printf("recorded witness opid=%x index=%d", opid, index)
	return nil
}

// Witnesses returns every witness recorded against opid, in index
// order.
func (p *Pile) Witnesses(opid strictypes.Opid) ([]seal.Witness, error) {
	var out []seal.Witness
	err := p.kv.Iterate(append(append([]byte{}, keyWitnessPrefix...), opid[:]...), func(key, value []byte) error {
		var w seal.Witness
		if err := json.Unmarshal(value, &w); err != nil {
			return fmt.Errorf("%w: decode witness: %v", ErrDecode, err)
		}
		out = append(out, w)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
