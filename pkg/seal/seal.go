// Copyright 2025 Certen Protocol

// Package seal implements the single-use-seal abstraction: concrete
// Bitcoin-layer outpoints, the closed Bitcoin/Liquid layer-1 union, and
// the either-explicit-or-token-committed seal shape operations carry.
package seal

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/certen/rgb-stockpile/pkg/strictypes"
)

// Outpoint is a concrete Bitcoin-layer single-use-seal location: a
// transaction output that, once spent, closes the seal bound to it.
type Outpoint struct {
	inner wire.OutPoint
}

// NewOutpoint builds an Outpoint from a txid and output index.
func NewOutpoint(txid chainhash.Hash, vout uint32) Outpoint {
	return Outpoint{inner: *wire.NewOutPoint(&txid, vout)}
}

// Txid returns the referenced transaction id.
func (o Outpoint) Txid() chainhash.Hash { return o.inner.Hash }

// Vout returns the referenced output index.
func (o Outpoint) Vout() uint32 { return o.inner.Index }

// String renders the outpoint in txid:vout form.
func (o Outpoint) String() string { return o.inner.String() }

type outpointJSON struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// MarshalJSON renders the outpoint for canonical operation encoding,
// since wire.OutPoint carries no struct tags of its own.
func (o Outpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(outpointJSON{Txid: o.inner.Hash.String(), Vout: o.inner.Index})
}

// UnmarshalJSON reverses MarshalJSON.
func (o *Outpoint) UnmarshalJSON(b []byte) error {
	var j outpointJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	h, err := chainhash.NewHashFromStr(j.Txid)
	if err != nil {
		return fmt.Errorf("seal: decode outpoint txid: %w", err)
	}
	o.inner = *wire.NewOutPoint(h, j.Vout)
	return nil
}

// layer1 is the private discriminant backing XOutpoint; it is not
// exported so XOutpoint stays a closed, non-extensible union, mirroring
// original_source/builder.rs's `Sealed` private trait on TxOutpoint.
type layer1 uint8

const (
	layerBitcoin layer1 = iota
	layerLiquid
)

// XOutpoint is the closed union of outpoints across the layer-1 chains
// RGB can be bound to. Only Bitcoin and Liquid outpoints are valid
// members; there is no exported way to add a third.
type XOutpoint struct {
	layer layer1
	point Outpoint
}

// BitcoinOutpoint wraps a Bitcoin outpoint as an XOutpoint.
func BitcoinOutpoint(o Outpoint) XOutpoint { return XOutpoint{layer: layerBitcoin, point: o} }

// LiquidOutpoint wraps a Liquid outpoint as an XOutpoint.
func LiquidOutpoint(o Outpoint) XOutpoint { return XOutpoint{layer: layerLiquid, point: o} }

// IsBitcoin reports whether x wraps a Bitcoin-layer outpoint.
func (x XOutpoint) IsBitcoin() bool { return x.layer == layerBitcoin }

// IsLiquid reports whether x wraps a Liquid-layer outpoint.
func (x XOutpoint) IsLiquid() bool { return x.layer == layerLiquid }

// Outpoint returns the wrapped concrete outpoint regardless of layer.
func (x XOutpoint) Outpoint() Outpoint { return x.point }

type xOutpointJSON struct {
	Layer    layer1   `json:"layer"`
	Outpoint Outpoint `json:"outpoint"`
}

// MarshalJSON renders x for canonical operation encoding.
func (x XOutpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(xOutpointJSON{Layer: x.layer, Outpoint: x.point})
}

// UnmarshalJSON reverses MarshalJSON.
func (x *XOutpoint) UnmarshalJSON(b []byte) error {
	var j xOutpointJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	x.layer = j.Layer
	x.point = j.Outpoint
	return nil
}

// AuthToken is the content hash a seal commits to: revealing a value
// hashing to this token proves the seal has been closed.
type AuthToken = strictypes.AuthToken

// EitherSeal is either an explicitly revealed seal (Alt) or a
// commitment to one that has not yet been disclosed (Token). Ported
// directly from original_source/stockpile.rs's EitherSeal<Seal> enum.
type EitherSeal struct {
	explicit *XOutpoint
	token    AuthToken
}

// AltSeal wraps an explicit seal location.
func AltSeal(o XOutpoint) EitherSeal { return EitherSeal{explicit: &o} }

// TokenSeal wraps a bare commitment with no revealed location yet.
func TokenSeal(t AuthToken) EitherSeal { return EitherSeal{token: t} }

// IsExplicit reports whether the seal's location has been revealed.
func (e EitherSeal) IsExplicit() bool { return e.explicit != nil }

// AuthTokenValue returns the commitment this seal corresponds to, computing
// it from the explicit location if one is present.
func (e EitherSeal) AuthTokenValue() (AuthToken, error) {
	if e.explicit != nil {
		return authTokenOf(*e.explicit), nil
	}
	return e.token, nil
}

// ToExplicit returns the revealed outpoint, failing if the seal is
// still only a token commitment.
func (e EitherSeal) ToExplicit() (XOutpoint, error) {
	if e.explicit == nil {
		return XOutpoint{}, fmt.Errorf("seal: token seal has no explicit location")
	}
	return *e.explicit, nil
}

type eitherSealJSON struct {
	Explicit *XOutpoint `json:"explicit,omitempty"`
	Token    AuthToken  `json:"token"`
}

// MarshalJSON renders e for canonical operation encoding.
func (e EitherSeal) MarshalJSON() ([]byte, error) {
	return json.Marshal(eitherSealJSON{Explicit: e.explicit, Token: e.token})
}

// UnmarshalJSON reverses MarshalJSON.
func (e *EitherSeal) UnmarshalJSON(b []byte) error {
	var j eitherSealJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	e.explicit = j.Explicit
	e.token = j.Token
	return nil
}

// AuthTokenOf computes the AuthToken an explicitly-revealed outpoint
// commits to, for callers (e.g. stockpile.Consume) that need to look a
// witness's outpoint up against a Resolver.
func AuthTokenOf(x XOutpoint) AuthToken { return authTokenOf(x) }

func authTokenOf(x XOutpoint) AuthToken {
	w := strictypes.NewWriter()
	_ = w.WriteU8(uint8(x.layer))
	_ = w.WriteBytes(x.point.inner.Hash[:])
	_ = w.WriteU32(x.point.inner.Index)
	h, err := strictypes.HashId(rawBytes(w.Bytes()))
	if err != nil {
		// strictypes.HashId only fails if StrictEncode fails; rawBytes
		// never fails to encode, so this path is unreachable.
		panic(err)
	}
	return h
}

// rawBytes is a trivial Encodable wrapper used to feed pre-serialized
// bytes through strictypes.HashId without re-deriving the hash logic.
type rawBytes []byte

func (r rawBytes) StrictEncode(w *strictypes.Writer) error { return w.WriteBytes(r) }

// Capability tags the two concrete ExposedSeal categories the builder
// is parametrized over in the original (GenesisSeal vs GraphSeal); Go
// has no phantom type parameters so we carry the distinction as a tag
// instead of a generic instantiation.
type Capability uint8

const (
	// GenesisSeal is the seal category usable only inside a genesis
	// operation's assignments.
	GenesisSeal Capability = iota
	// GraphSeal is the seal category usable inside transitions and
	// extensions.
	GraphSeal
)
