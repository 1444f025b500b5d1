package keeper

import (
	"context"

	"cosmossdk.io/collections"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// EscrowStore is the escrow ledger: the set of (channel, contract, token) triples
// whose token is currently represented on the counterparty of channel.
type EscrowStore interface {
	Has(ctx context.Context, entry types.EscrowEntry) (bool, error)
	Set(ctx context.Context, entry types.EscrowEntry) error
	Remove(ctx context.Context, entry types.EscrowEntry) error
	// Entries returns every entry of one channel.
	Entries(ctx context.Context, channelID string) ([]types.EscrowEntry, error)
	// All returns every entry of every channel.
	All(ctx context.Context) ([]types.EscrowEntry, error)
}

type escrowKey = collections.Triple[string, string, string]

var _ EscrowStore = collectionsEscrow{}

type collectionsEscrow struct {
	set collections.KeySet[escrowKey]
}

// NewCollectionsEscrow registers the escrow key set on sb.
func NewCollectionsEscrow(sb *collections.SchemaBuilder) EscrowStore {
	return collectionsEscrow{
		set: collections.NewKeySet(
			sb, types.EscrowKey, "escrow",
			collections.TripleKeyCodec(collections.StringKey, collections.StringKey, collections.StringKey),
		),
	}
}

func (s collectionsEscrow) Has(ctx context.Context, entry types.EscrowEntry) (bool, error) {
	return s.set.Has(ctx, toEscrowKey(entry))
}

func (s collectionsEscrow) Set(ctx context.Context, entry types.EscrowEntry) error {
	return s.set.Set(ctx, toEscrowKey(entry))
}

func (s collectionsEscrow) Remove(ctx context.Context, entry types.EscrowEntry) error {
	return s.set.Remove(ctx, toEscrowKey(entry))
}

func (s collectionsEscrow) Entries(ctx context.Context, channelID string) ([]types.EscrowEntry, error) {
	return s.collect(ctx, collections.NewPrefixedTripleRange[string, string, string](channelID))
}

func (s collectionsEscrow) All(ctx context.Context) ([]types.EscrowEntry, error) {
	return s.collect(ctx, nil)
}

func (s collectionsEscrow) collect(ctx context.Context, rng collections.Ranger[escrowKey]) ([]types.EscrowEntry, error) {
	iter, err := s.set.Iterate(ctx, rng)
	if err != nil {
		return nil, err
	}
	keys, err := iter.Keys()
	if err != nil {
		return nil, err
	}
	entries := make([]types.EscrowEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, types.EscrowEntry{
			ChannelID: key.K1(),
			Contract:  key.K2(),
			TokenID:   key.K3(),
		})
	}
	return entries, nil
}

func toEscrowKey(entry types.EscrowEntry) escrowKey {
	return collections.Join3(entry.ChannelID, entry.Contract, entry.TokenID)
}
