package nfttransfer

import (
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/nfttransfer/keeper"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var _ porttypes.IBCModule = IBCModule{}

// IBCModule implements the ICS26 interface for nft-transfer given the keeper and the
// executor running its deferred transfers.
type IBCModule struct {
	keeper   keeper.Keeper
	executor *Executor
}

// NewIBCModule creates a new IBCModule given the keeper and executor
func NewIBCModule(k keeper.Keeper, executor *Executor) IBCModule {
	return IBCModule{
		keeper:   k,
		executor: executor,
	}
}

// OnChanOpenInit implements the IBCModule interface
func (im IBCModule) OnChanOpenInit(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID string,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	version string,
) (string, error) {
	if err := im.keeper.ValidateChannelOpen(ctx, order, portID, version); err != nil {
		return "", err
	}

	// Claim channel capability passed back by IBC module
	if err := im.keeper.ClaimCapability(ctx, chanCap, host.ChannelCapabilityPath(portID, channelID)); err != nil {
		return "", err
	}
	return version, nil
}

// OnChanOpenTry implements the IBCModule interface.
func (im IBCModule) OnChanOpenTry(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	counterpartyVersion string,
) (string, error) {
	if err := im.keeper.ValidateChannelOpen(ctx, order, portID, counterpartyVersion); err != nil {
		return "", err
	}

	if err := im.keeper.ClaimCapability(ctx, chanCap, host.ChannelCapabilityPath(portID, channelID)); err != nil {
		return "", err
	}
	return types.Version, nil
}

// OnChanOpenAck implements the IBCModule interface
func (im IBCModule) OnChanOpenAck(
	ctx sdk.Context,
	portID,
	channelID string,
	counterpartyChannelID string,
	counterpartyVersion string,
) error {
	if err := types.ValidateVersion(counterpartyVersion); err != nil {
		return err
	}
	_, err := im.keeper.ConnectChannel(ctx, portID, channelID, counterpartyChannelID)
	return err
}

// OnChanOpenConfirm implements the IBCModule interface
func (im IBCModule) OnChanOpenConfirm(
	ctx sdk.Context,
	portID,
	channelID string,
) error {
	_, err := im.keeper.ConnectChannel(ctx, portID, channelID, "")
	return err
}

// OnChanCloseInit implements the IBCModule interface
func (im IBCModule) OnChanCloseInit(
	ctx sdk.Context,
	portID,
	channelID string,
) error {
	return im.keeper.ValidateChannelClose(ctx, portID, channelID)
}

// OnChanCloseConfirm implements the IBCModule interface
func (im IBCModule) OnChanCloseConfirm(
	ctx sdk.Context,
	portID,
	channelID string,
) error {
	return im.keeper.ValidateChannelClose(ctx, portID, channelID)
}

// OnRecvPacket implements the IBCModule interface. It always returns an
// acknowledgement; state is committed only when that acknowledgement is a success.
func (im IBCModule) OnRecvPacket(
	ctx sdk.Context,
	packet channeltypes.Packet,
	relayer sdk.AccAddress,
) (ack ibcexported.Acknowledgement) {
	defer im.executor.Reset()
	defer func() {
		if r := recover(); r != nil {
			im.keeper.Logger().Error("recovered from panic in OnRecvPacket",
				zap.String("channel", packet.GetDestChannel()),
				zap.Uint64("sequence", packet.GetSequence()),
				zap.Any("panic", r),
			)
			failed := types.NewErrorAcknowledgement(errorsmod.Wrapf(types.ErrReceivePanic, "%v", r))
			emitRecvFailure(ctx, packet, failed, false)
			ack = failed
		}
	}()

	cacheCtx, writeFn := ctx.CacheContext()
	result := im.keeper.OnRecvPacket(cacheCtx, packet)
	if !result.Success() {
		emitRecvFailure(ctx, packet, result, false)
		return result
	}

	patched, err := settle(cacheCtx, im.keeper, im.executor)
	switch {
	case err != nil:
		result = types.NewErrorAcknowledgement(err)
	case patched != nil:
		result = *patched
	}
	if !result.Success() {
		emitRecvFailure(ctx, packet, result, true)
		return result
	}

	writeFn()
	return result
}

// emitRecvFailure records a failed receive on ctx. Events of the discarded cached
// context never reach the host, so the outcome is emitted again from the final ack.
func emitRecvFailure(ctx sdk.Context, packet channeltypes.Packet, ack channeltypes.Acknowledgement, delivery bool) {
	reason := ack.GetError()
	if delivery {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeDeliveryFail,
				sdk.NewAttribute(types.AttributeKeyChannel, packet.GetDestChannel()),
				sdk.NewAttribute(types.AttributeKeyAckError, reason),
			),
		)
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePacket,
			sdk.NewAttribute(types.AttributeKeyChannel, packet.GetDestChannel()),
			sdk.NewAttribute(types.AttributeKeySequence, strconv.FormatUint(packet.GetSequence(), 10)),
			sdk.NewAttribute(types.AttributeKeyAckSuccess, strconv.FormatBool(false)),
			sdk.NewAttribute(types.AttributeKeyAckError, reason),
		),
	)
}

// OnAcknowledgementPacket implements the IBCModule interface
func (im IBCModule) OnAcknowledgementPacket(
	ctx sdk.Context,
	packet channeltypes.Packet,
	acknowledgement []byte,
	relayer sdk.AccAddress,
) error {
	defer im.executor.Reset()

	cacheCtx, writeFn := ctx.CacheContext()
	if err := im.keeper.OnAcknowledgementPacket(cacheCtx, packet, acknowledgement); err != nil {
		return err
	}
	if _, err := settle(cacheCtx, im.keeper, im.executor); err != nil {
		return err
	}
	writeFn()
	return nil
}

// OnTimeoutPacket implements the IBCModule interface
func (im IBCModule) OnTimeoutPacket(
	ctx sdk.Context,
	packet channeltypes.Packet,
	relayer sdk.AccAddress,
) error {
	defer im.executor.Reset()

	cacheCtx, writeFn := ctx.CacheContext()
	if err := im.keeper.OnTimeoutPacket(cacheCtx, packet); err != nil {
		return err
	}
	if _, err := settle(cacheCtx, im.keeper, im.executor); err != nil {
		return err
	}
	writeFn()
	return nil
}
