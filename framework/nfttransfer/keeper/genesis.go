package keeper

import (
	"fmt"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// InitGenesis initializes the nft-transfer state and binds the port.
func (k Keeper) InitGenesis(ctx sdk.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}

	// Only try to bind to port if it is not already bound, since we may already own
	// port capability from capability InitGenesis
	if !k.IsBound(ctx, gs.Params.PortID) {
		if err := k.BindPort(ctx, gs.Params.PortID); err != nil {
			return fmt.Errorf("could not claim port capability: %w", err)
		}
	}

	for _, ci := range gs.Channels {
		if err := k.Channels.Set(ctx, ci.ChannelID, ci); err != nil {
			return err
		}
	}
	for _, entry := range gs.Escrow {
		if err := k.escrow.Set(ctx, entry); err != nil {
			return err
		}
	}
	for _, o := range gs.Outbound {
		if err := k.Outbound.Set(ctx, collections.Join(o.ChannelID, o.Sequence), o); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis exports the nft-transfer state.
func (k Keeper) ExportGenesis(ctx sdk.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	channels, err := k.GetChannelInfos(ctx)
	if err != nil {
		return nil, err
	}
	escrow, err := k.escrow.All(ctx)
	if err != nil {
		return nil, err
	}

	iter, err := k.Outbound.Iterate(ctx, nil)
	if err != nil {
		return nil, err
	}
	outbound, err := iter.Values()
	if err != nil {
		return nil, err
	}

	return &types.GenesisState{
		Params:   params,
		Channels: channels,
		Escrow:   escrow,
		Outbound: outbound,
	}, nil
}
