// Copyright 2025 Certen Protocol

// Package resolver defines the chain-lookup collaborator the builder
// and stockpile packages call out to when they need to confirm a
// seal's closing witness actually landed on the base chain. The base
// chain client itself (Electrum, a full node RPC client, etc.) is
// outside this module's scope; only the interface and an offline
// reference implementation live here.
package resolver

import (
	"context"
	"errors"

	"github.com/certen/rgb-stockpile/pkg/seal"
)

// ErrNotFound is returned when a resolver has no information about the
// requested seal.
var ErrNotFound = errors.New("resolver: no published witness found for seal")

// Resolver looks up whether a seal identified by its AuthToken has
// been closed on the base chain, and if so, what the published witness
// was.
type Resolver interface {
	ResolvePublic(ctx context.Context, token seal.AuthToken) (*seal.PublishedWitness, error)
}

// DumbResolver never finds anything; it is the resolver
// ContractBuilder.IssueContractRaw uses in the original implementation
// wherever issuance needs a Resolver value but no chain lookup is
// actually required (genesis has no inputs to confirm).
type DumbResolver struct{}

// ResolvePublic always returns ErrNotFound.
func (DumbResolver) ResolvePublic(ctx context.Context, token seal.AuthToken) (*seal.PublishedWitness, error) {
	return nil, ErrNotFound
}

// ElectrumResolver is the shape a production Electrum-backed resolver
// would take; it defines the constructor/field surface without pulling
// in an actual Electrum client library (a Non-goal of this module).
// Callers supply a Query function implementing the real network call.
type ElectrumResolver struct {
	Endpoint string
	Query    func(ctx context.Context, token seal.AuthToken) (*seal.PublishedWitness, error)
}

// NewElectrumResolver returns a resolver that delegates lookups to
// query against endpoint.
func NewElectrumResolver(endpoint string, query func(ctx context.Context, token seal.AuthToken) (*seal.PublishedWitness, error)) *ElectrumResolver {
	return &ElectrumResolver{Endpoint: endpoint, Query: query}
}

// ResolvePublic delegates to r.Query, failing with ErrNotFound if none
// was configured.
func (r *ElectrumResolver) ResolvePublic(ctx context.Context, token seal.AuthToken) (*seal.PublishedWitness, error) {
	if r.Query == nil {
		return nil, ErrNotFound
	}
	return r.Query(ctx, token)
}
