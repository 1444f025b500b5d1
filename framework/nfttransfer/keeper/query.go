package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// GetChannelInfo returns the ChannelInfo stored for channelID.
func (k Keeper) GetChannelInfo(ctx context.Context, channelID string) (types.ChannelInfo, error) {
	info, err := k.Channels.Get(ctx, channelID)
	if errors.Is(err, collections.ErrNotFound) {
		return types.ChannelInfo{}, errorsmod.Wrapf(types.ErrChannelNotFound, "channel %s", channelID)
	}
	return info, err
}

// GetChannelInfos returns every connected channel ordered by id.
func (k Keeper) GetChannelInfos(ctx context.Context) ([]types.ChannelInfo, error) {
	iter, err := k.Channels.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	return iter.Values()
}

// IsEscrowed reports whether entry is in the escrow ledger.
func (k Keeper) IsEscrowed(ctx context.Context, entry types.EscrowEntry) (bool, error) {
	return k.escrow.Has(ctx, entry)
}

// EscrowedTokens returns the escrow entries of one channel.
func (k Keeper) EscrowedTokens(ctx context.Context, channelID string) ([]types.EscrowEntry, error) {
	return k.escrow.Entries(ctx, channelID)
}

// GetOutboundTransfer returns the in-flight send of (channelID, sequence).
func (k Keeper) GetOutboundTransfer(ctx context.Context, channelID string, sequence uint64) (types.OutboundTransfer, error) {
	outbound, err := k.Outbound.Get(ctx, collections.Join(channelID, sequence))
	if errors.Is(err, collections.ErrNotFound) {
		return types.OutboundTransfer{}, errorsmod.Wrapf(types.ErrOutboundNotFound, "channel %s sequence %d", channelID, sequence)
	}
	return outbound, err
}
