package keeper

import (
	"errors"
	"strconv"
	"strings"

	"cosmossdk.io/collections"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// Transfer locks the tokens of msg into the channel escrow and sends the packet.
//
// The lock itself is deferred: it is dispatched tagged with an OutboundLock reply and
// the send stays pending until OnReply observes it succeed. Any validation failure
// returns before anything is sent or dispatched.
func (k Keeper) Transfer(ctx sdk.Context, msg *types.MsgTransfer) (uint64, error) {
	if err := msg.ValidateBasic(); err != nil {
		return 0, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return 0, err
	}
	if !params.SendEnabled {
		return 0, types.ErrSendDisabled
	}
	if params.MaxTokensPerPacket > 0 && len(msg.TokenIDs) > int(params.MaxTokensPerPacket) {
		return 0, errorsmod.Wrapf(types.ErrTooManyTokens, "%d tokens, max %d", len(msg.TokenIDs), params.MaxTokensPerPacket)
	}
	if msg.SourcePort != params.PortID {
		return 0, errorsmod.Wrapf(types.ErrInvalidPort, "invalid port: %s, expected %s", msg.SourcePort, params.PortID)
	}

	connected, err := k.Channels.Has(ctx, msg.SourceChannel)
	if err != nil {
		return 0, err
	}
	if !connected {
		return 0, errorsmod.Wrapf(types.ErrChannelNotFound, "channel %s", msg.SourceChannel)
	}

	sender, err := sdk.AccAddressFromBech32(msg.Sender)
	if err != nil {
		return 0, errorsmod.Wrap(types.ErrInvalidAddress, err.Error())
	}
	tokenURIs := make([]string, len(msg.TokenIDs))
	for i, tokenID := range msg.TokenIDs {
		owner := k.nftKeeper.GetOwner(ctx, msg.ClassID, tokenID)
		if owner.Empty() || !owner.Equals(sender) {
			return 0, errorsmod.Wrapf(types.ErrUnauthorized, "%s does not own %s/%s", msg.Sender, msg.ClassID, tokenID)
		}
		tokenURIs[i] = k.nftKeeper.GetTokenURI(ctx, msg.ClassID, tokenID)
	}

	chanCap, ok := k.scopedKeeper.GetCapability(ctx, host.ChannelCapabilityPath(msg.SourcePort, msg.SourceChannel))
	if !ok {
		return 0, errorsmod.Wrap(channeltypes.ErrChannelCapabilityNotFound, "module does not own channel capability")
	}
	if !k.AuthenticateCapability(ctx, chanCap, host.ChannelCapabilityPath(msg.SourcePort, msg.SourceChannel)) {
		return 0, errorsmod.Wrapf(channeltypes.ErrChannelCapabilityNotFound, "capability of %s/%s is not authenticated", msg.SourcePort, msg.SourceChannel)
	}

	packetData := types.NewNonFungibleTokenPacketData(
		types.NewClassID(msg.SourcePort, msg.SourceChannel, msg.ClassID),
		k.nftKeeper.GetClassURI(ctx, msg.ClassID),
		msg.TokenIDs,
		tokenURIs,
		msg.Sender,
		msg.Receiver,
	)

	timeoutTimestamp := msg.TimeoutTimestamp
	if msg.TimeoutHeight.IsZero() && timeoutTimestamp == 0 {
		timeoutTimestamp = uint64(ctx.BlockTime().Add(params.DefaultTimeout).UnixNano())
	}

	sequence, err := k.ics4Wrapper.SendPacket(ctx, chanCap, msg.SourcePort, msg.SourceChannel, msg.TimeoutHeight, timeoutTimestamp, packetData.GetBytes())
	if err != nil {
		return 0, err
	}

	outbound := types.OutboundTransfer{
		ChannelID: msg.SourceChannel,
		Sequence:  sequence,
		Contract:  msg.ClassID,
		TokenIDs:  msg.TokenIDs,
		Sender:    msg.Sender,
		State:     types.LockPending,
	}
	if err := k.Outbound.Set(ctx, collections.Join(msg.SourceChannel, sequence), outbound); err != nil {
		return 0, err
	}

	lock := types.DeferredTransfer{
		Reply: types.OutboundLock{
			PortID:    msg.SourcePort,
			ChannelID: msg.SourceChannel,
			Sequence:  sequence,
		},
		Contract: msg.ClassID,
		TokenIDs: msg.TokenIDs,
		Receiver: types.GetEscrowAddress(msg.SourcePort, msg.SourceChannel),
	}
	if err := k.dispatcher.Dispatch(ctx, lock); err != nil {
		return 0, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTransfer,
			sdk.NewAttribute(types.AttributeKeySender, msg.Sender),
			sdk.NewAttribute(types.AttributeKeyReceiver, msg.Receiver),
			sdk.NewAttribute(types.AttributeKeyClassID, packetData.ClassID),
			sdk.NewAttribute(types.AttributeKeyTokenIDs, strings.Join(msg.TokenIDs, ",")),
			sdk.NewAttribute(types.AttributeKeySequence, strconv.FormatUint(sequence, 10)),
		),
	)
	k.log.Info("sent nft transfer",
		zap.String("channel", msg.SourceChannel),
		zap.Uint64("sequence", sequence),
		zap.String("contract", msg.ClassID),
		zap.Strings("token_ids", msg.TokenIDs),
	)
	return sequence, nil
}

// recvResult carries the attributes of an accepted packet.
type recvResult struct {
	data     types.NonFungibleTokenPacketData
	contract string
}

// OnRecvPacket handles a packet that returns escrowed tokens. It never fails: every
// error is turned into an error acknowledgement, and the success acknowledgement is
// provisional until the dispatched InboundDelivery reply is seen.
func (k Keeper) OnRecvPacket(ctx sdk.Context, packet channeltypes.Packet) channeltypes.Acknowledgement {
	res, err := k.onRecvPacket(ctx, packet)
	if err != nil {
		k.log.Info("rejected nft packet",
			zap.String("channel", packet.GetDestChannel()),
			zap.Uint64("sequence", packet.GetSequence()),
			zap.Error(err),
		)
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePacket,
				sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(false)),
				sdk.NewAttribute(types.AttributeKeyAckError, err.Error()),
			),
		)
		return types.NewErrorAcknowledgement(err)
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePacket,
			sdk.NewAttribute(types.AttributeKeySender, res.data.Sender),
			sdk.NewAttribute(types.AttributeKeyReceiver, res.data.Receiver),
			sdk.NewAttribute(types.AttributeKeyContract, res.contract),
			sdk.NewAttribute(types.AttributeKeyTokenIDs, strings.Join(res.data.TokenIDs, ",")),
			sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(true)),
		),
	)
	return types.NewResultAcknowledgement()
}

func (k Keeper) onRecvPacket(ctx sdk.Context, packet channeltypes.Packet) (recvResult, error) {
	data, err := types.DecodePacketData(packet.GetData())
	if err != nil {
		return recvResult{}, err
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return recvResult{}, err
	}
	if !params.ReceiveEnabled {
		return recvResult{}, types.ErrReceiveDisabled
	}
	if params.MaxTokensPerPacket > 0 && len(data.TokenIDs) > int(params.MaxTokensPerPacket) {
		return recvResult{}, errorsmod.Wrapf(types.ErrTooManyTokens, "%d tokens, max %d", len(data.TokenIDs), params.MaxTokensPerPacket)
	}

	path, err := types.ParseClassID(data.ClassID)
	if err != nil {
		return recvResult{}, err
	}
	if err := path.ValidateEndpoint(packet.GetDestPort(), packet.GetDestChannel()); err != nil {
		return recvResult{}, err
	}

	receiver, err := sdk.AccAddressFromBech32(data.Receiver)
	if err != nil {
		return recvResult{}, errorsmod.Wrapf(types.ErrInvalidAddress, "receiver %s: %s", data.Receiver, err)
	}

	// every token must be escrowed before any entry is touched
	entries := make([]types.EscrowEntry, len(data.TokenIDs))
	for i, tokenID := range data.TokenIDs {
		entry := types.EscrowEntry{
			ChannelID: packet.GetDestChannel(),
			Contract:  path.Contract,
			TokenID:   tokenID,
		}
		escrowed, err := k.escrow.Has(ctx, entry)
		if err != nil {
			return recvResult{}, err
		}
		if !escrowed {
			return recvResult{}, errorsmod.Wrap(types.ErrNotEscrowed, entry.String())
		}
		entries[i] = entry
	}

	for _, entry := range entries {
		if err := k.escrow.Remove(ctx, entry); err != nil {
			return recvResult{}, err
		}
	}

	delivery := types.DeferredTransfer{
		Reply:    types.InboundDelivery{Packet: packet},
		Contract: path.Contract,
		TokenIDs: data.TokenIDs,
		Receiver: receiver,
	}
	if err := k.dispatcher.Dispatch(ctx, delivery); err != nil {
		return recvResult{}, err
	}

	return recvResult{data: data, contract: path.Contract}, nil
}

// OnAcknowledgementPacket commits escrow entries for a successful send and refunds
// the sender of a failed one.
func (k Keeper) OnAcknowledgementPacket(ctx sdk.Context, packet channeltypes.Packet, acknowledgement []byte) error {
	data, err := types.DecodePacketData(packet.GetData())
	if err != nil {
		return err
	}
	ack, err := types.DecodeAcknowledgement(acknowledgement)
	if err != nil {
		return err
	}

	switch resp := ack.Response.(type) {
	case *channeltypes.Acknowledgement_Error:
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypePacket,
				sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(false)),
				sdk.NewAttribute(types.AttributeKeyAckError, resp.Error),
			),
		)
		k.log.Info("nft packet acknowledged with error",
			zap.String("channel", packet.GetSourceChannel()),
			zap.Uint64("sequence", packet.GetSequence()),
			zap.String("error", resp.Error),
		)
		return k.refundPacketTokens(ctx, packet, data, false)
	default:
		return k.commitEscrow(ctx, packet, data)
	}
}

// OnTimeoutPacket refunds the sender of a packet that was never received.
func (k Keeper) OnTimeoutPacket(ctx sdk.Context, packet channeltypes.Packet) error {
	data, err := types.DecodePacketData(packet.GetData())
	if err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTimeout,
			sdk.NewAttribute(types.AttributeKeyChannel, packet.GetSourceChannel()),
			sdk.NewAttribute(types.AttributeKeySequence, strconv.FormatUint(packet.GetSequence(), 10)),
		),
	)
	return k.refundPacketTokens(ctx, packet, data, true)
}

func (k Keeper) commitEscrow(ctx sdk.Context, packet channeltypes.Packet, data types.NonFungibleTokenPacketData) error {
	path, err := types.ParseClassID(data.ClassID)
	if err != nil {
		return err
	}

	key := collections.Join(packet.GetSourceChannel(), packet.GetSequence())
	outbound, err := k.Outbound.Get(ctx, key)
	if errors.Is(err, collections.ErrNotFound) {
		return errorsmod.Wrapf(types.ErrOutboundNotFound, "channel %s sequence %d", packet.GetSourceChannel(), packet.GetSequence())
	}
	if err != nil {
		return err
	}
	if outbound.State != types.LockConfirmed {
		return errorsmod.Wrapf(types.ErrLockNotConfirmed, "channel %s sequence %d is %s", packet.GetSourceChannel(), packet.GetSequence(), outbound.State)
	}
	if outbound.Contract != path.Contract {
		return errorsmod.Wrapf(types.ErrInvalidPacket, "packet contract %s does not match sent contract %s", path.Contract, outbound.Contract)
	}

	for _, tokenID := range data.TokenIDs {
		entry := types.EscrowEntry{
			ChannelID: packet.GetSourceChannel(),
			Contract:  path.Contract,
			TokenID:   tokenID,
		}
		if err := k.escrow.Set(ctx, entry); err != nil {
			return err
		}
	}
	if err := k.Outbound.Remove(ctx, key); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePacket,
			sdk.NewAttribute(types.AttributeKeyContract, path.Contract),
			sdk.NewAttribute(types.AttributeKeyTokenIDs, strings.Join(data.TokenIDs, ",")),
			sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(true)),
		),
	)
	k.log.Info("escrowed nft transfer",
		zap.String("channel", packet.GetSourceChannel()),
		zap.Uint64("sequence", packet.GetSequence()),
		zap.String("contract", path.Contract),
		zap.Strings("token_ids", data.TokenIDs),
	)
	return nil
}

// refundPacketTokens dispatches the return of the packet's tokens to their sender.
// No escrow entry is written: from this side the tokens never left.
func (k Keeper) refundPacketTokens(ctx sdk.Context, packet channeltypes.Packet, data types.NonFungibleTokenPacketData, timedOut bool) error {
	path, err := types.ParseClassID(data.ClassID)
	if err != nil {
		return err
	}
	sender, err := sdk.AccAddressFromBech32(data.Sender)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "sender %s: %s", data.Sender, err)
	}

	if err := k.Outbound.Remove(ctx, collections.Join(packet.GetSourceChannel(), packet.GetSequence())); err != nil {
		return err
	}

	refund := types.DeferredTransfer{
		Reply:    types.OutboundRefund{Packet: packet, TimedOut: timedOut},
		Contract: path.Contract,
		TokenIDs: data.TokenIDs,
		Receiver: sender,
	}
	if err := k.dispatcher.Dispatch(ctx, refund); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRefund,
			sdk.NewAttribute(types.AttributeKeyReceiver, data.Sender),
			sdk.NewAttribute(types.AttributeKeyClassID, path.String()),
			sdk.NewAttribute(types.AttributeKeyContract, path.Contract),
			sdk.NewAttribute(types.AttributeKeyTokenIDs, strings.Join(data.TokenIDs, ",")),
		),
	)
	k.log.Info("refunding nft transfer",
		zap.String("channel", packet.GetSourceChannel()),
		zap.Uint64("sequence", packet.GetSequence()),
		zap.Bool("timed_out", timedOut),
		zap.Strings("token_ids", data.TokenIDs),
	)
	return nil
}
