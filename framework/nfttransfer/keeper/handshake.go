package keeper

import (
	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// ValidateChannelOpen checks the port, ordering and version proposed during a channel
// open handshake step.
func (k Keeper) ValidateChannelOpen(ctx sdk.Context, order channeltypes.Order, portID, version string) error {
	boundPort, err := k.GetPort(ctx)
	if err != nil {
		return err
	}
	if portID != boundPort {
		return errorsmod.Wrapf(types.ErrInvalidPort, "invalid port: %s, expected %s", portID, boundPort)
	}
	if err := types.ValidateChannelOrder(order); err != nil {
		return err
	}
	return types.ValidateVersion(version)
}

// ConnectChannel persists the ChannelInfo of a channel that just finished its
// handshake on this end. counterpartyChannelID may be empty when the core channel
// already records it.
func (k Keeper) ConnectChannel(ctx sdk.Context, portID, channelID, counterpartyChannelID string) (types.ChannelInfo, error) {
	channel, found := k.channelKeeper.GetChannel(ctx, portID, channelID)
	if !found {
		return types.ChannelInfo{}, errorsmod.Wrapf(types.ErrChannelNotFound, "port %s channel %s", portID, channelID)
	}
	if len(channel.ConnectionHops) == 0 {
		return types.ChannelInfo{}, errorsmod.Wrapf(types.ErrChannelNotFound, "channel %s has no connection hops", channelID)
	}

	has, err := k.Channels.Has(ctx, channelID)
	if err != nil {
		return types.ChannelInfo{}, err
	}
	if has {
		return types.ChannelInfo{}, errorsmod.Wrapf(types.ErrChannelExists, "channel %s", channelID)
	}

	if counterpartyChannelID == "" {
		counterpartyChannelID = channel.Counterparty.ChannelId
	}
	info := types.ChannelInfo{
		ChannelID: channelID,
		CounterpartyEndpoint: types.Endpoint{
			PortID:    channel.Counterparty.PortId,
			ChannelID: counterpartyChannelID,
		},
		ConnectionID: channel.ConnectionHops[0],
	}
	if err := info.Validate(); err != nil {
		return types.ChannelInfo{}, err
	}
	if err := k.Channels.Set(ctx, channelID, info); err != nil {
		return types.ChannelInfo{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeChannelOpen,
			sdk.NewAttribute(types.AttributeKeyChannel, channelID),
		),
	)
	k.log.Info("channel connected",
		zap.String("channel", channelID),
		zap.String("counterparty_port", info.CounterpartyEndpoint.PortID),
		zap.String("counterparty_channel", info.CounterpartyEndpoint.ChannelID),
		zap.String("connection", info.ConnectionID),
	)
	return info, nil
}

// ValidateChannelClose always fails. The error reports how many tokens the channel
// holds in escrow and how many sends are pending on it.
func (k Keeper) ValidateChannelClose(ctx sdk.Context, portID, channelID string) error {
	entries, err := k.escrow.Entries(ctx, channelID)
	if err != nil {
		return err
	}

	iter, err := k.Outbound.Iterate(ctx, collections.NewPrefixedPairRange[string, uint64](channelID))
	if err != nil {
		return err
	}
	pending, err := iter.Keys()
	if err != nil {
		return err
	}

	k.log.Warn("refusing channel close",
		zap.String("port", portID),
		zap.String("channel", channelID),
		zap.Int("escrowed", len(entries)),
		zap.Int("pending", len(pending)),
	)
	return errorsmod.Wrapf(types.ErrChannelCloseUnsupported,
		"channel %s holds %d escrowed tokens and %d pending sends", channelID, len(entries), len(pending))
}
