package keeper

import (
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// OnReply routes the outcome of a deferred transfer back to the handler that
// dispatched it. A non-nil acknowledgement replaces the one returned by
// OnRecvPacket; a non-nil error aborts the dispatching handler.
func (k Keeper) OnReply(ctx sdk.Context, reply types.ReplyContext, outcome error) (*channeltypes.Acknowledgement, error) {
	switch r := reply.(type) {
	case types.OutboundLock:
		if outcome != nil {
			return nil, errorsmod.Wrapf(types.ErrLockFailed, "channel %s sequence %d: %s", r.ChannelID, r.Sequence, outcome)
		}
		return nil, k.confirmLock(ctx, r)

	case types.InboundDelivery:
		if outcome == nil {
			return nil, nil
		}
		k.log.Error("nft delivery failed, patching acknowledgement",
			zap.String("channel", r.Packet.GetDestChannel()),
			zap.Uint64("sequence", r.Packet.GetSequence()),
			zap.Error(outcome),
		)
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeDeliveryFail,
				sdk.NewAttribute(types.AttributeKeyChannel, r.Packet.GetDestChannel()),
				sdk.NewAttribute(types.AttributeKeyAckError, outcome.Error()),
			),
		)
		ack := types.NewErrorAcknowledgement(errorsmod.Wrap(types.ErrDeliveryFailed, outcome.Error()))
		return &ack, nil

	case types.OutboundRefund:
		if outcome != nil {
			return nil, errorsmod.Wrapf(types.ErrRefundFailed, "channel %s sequence %d: %s",
				r.Packet.GetSourceChannel(), r.Packet.GetSequence(), outcome)
		}
		k.log.Debug("refund delivered",
			zap.String("channel", r.Packet.GetSourceChannel()),
			zap.Uint64("sequence", r.Packet.GetSequence()),
		)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown reply context %T", reply)
	}
}

func (k Keeper) confirmLock(ctx sdk.Context, lock types.OutboundLock) error {
	key := collections.Join(lock.ChannelID, lock.Sequence)
	outbound, err := k.Outbound.Get(ctx, key)
	if errors.Is(err, collections.ErrNotFound) {
		return errorsmod.Wrapf(types.ErrOutboundNotFound, "channel %s sequence %d", lock.ChannelID, lock.Sequence)
	}
	if err != nil {
		return err
	}
	outbound.State = types.LockConfirmed
	return k.Outbound.Set(ctx, key, outbound)
}
