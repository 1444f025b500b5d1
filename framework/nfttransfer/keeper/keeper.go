package keeper

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// Dispatcher queues a deferred transfer. The transfer runs after the dispatching
// handler returns and its outcome is delivered to Keeper.OnReply.
type Dispatcher interface {
	Dispatch(ctx sdk.Context, transfer types.DeferredTransfer) error
}

// Keeper holds the nft-transfer state: params, channel infos, the escrow ledger and
// in-flight sends.
type Keeper struct {
	log *zap.Logger

	Schema   collections.Schema
	Params   collections.Item[types.Params]
	Channels collections.Map[string, types.ChannelInfo]
	Outbound collections.Map[collections.Pair[string, uint64], types.OutboundTransfer]
	escrow   EscrowStore

	ics4Wrapper   types.ICS4Wrapper
	channelKeeper types.ChannelKeeper
	portKeeper    types.PortKeeper
	scopedKeeper  types.ScopedKeeper
	nftKeeper     types.NFTKeeper
	dispatcher    Dispatcher
}

// Option configures a Keeper.
type Option func(*Keeper)

// WithEscrowStore replaces the collections-backed escrow ledger.
func WithEscrowStore(s EscrowStore) Option {
	return func(k *Keeper) {
		k.escrow = s
	}
}

// NewKeeper creates a new nft-transfer Keeper instance
func NewKeeper(
	logger *zap.Logger,
	storeService store.KVStoreService,
	ics4Wrapper types.ICS4Wrapper,
	channelKeeper types.ChannelKeeper,
	portKeeper types.PortKeeper,
	scopedKeeper types.ScopedKeeper,
	nftKeeper types.NFTKeeper,
	dispatcher Dispatcher,
	opts ...Option,
) Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		log:      logger.With(zap.String("module", types.ModuleName)),
		Params:   collections.NewItem(sb, types.ParamsKey, "params", types.CBORValue[types.Params]()),
		Channels: collections.NewMap(sb, types.ChannelInfoKey, "channels", collections.StringKey, types.CBORValue[types.ChannelInfo]()),
		Outbound: collections.NewMap(
			sb, types.OutboundKey, "outbound",
			collections.PairKeyCodec(collections.StringKey, collections.Uint64Key),
			types.CBORValue[types.OutboundTransfer](),
		),
		escrow:        NewCollectionsEscrow(sb),
		ics4Wrapper:   ics4Wrapper,
		channelKeeper: channelKeeper,
		portKeeper:    portKeeper,
		scopedKeeper:  scopedKeeper,
		nftKeeper:     nftKeeper,
		dispatcher:    dispatcher,
	}

	schema, err := sb.Build()
	if err != nil {
		panic(fmt.Errorf("failed to build nft-transfer schema: %w", err))
	}
	k.Schema = schema

	for _, opt := range opts {
		opt(&k)
	}
	return k
}

// Logger returns the module logger.
func (k Keeper) Logger() *zap.Logger {
	return k.log
}

// GetParams returns the stored params, or the defaults when none were set.
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	params, err := k.Params.Get(ctx)
	if errors.Is(err, collections.ErrNotFound) {
		return types.DefaultParams(), nil
	}
	if err != nil {
		return types.Params{}, fmt.Errorf("failed to read params: %w", err)
	}
	return params, nil
}

// SetParams validates and stores params.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return k.Params.Set(ctx, params)
}

// GetPort returns the port the module is bound to.
func (k Keeper) GetPort(ctx context.Context) (string, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return "", err
	}
	return params.PortID, nil
}

// IsBound checks if the module already owns the capability of portID.
func (k Keeper) IsBound(ctx sdk.Context, portID string) bool {
	_, ok := k.scopedKeeper.GetCapability(ctx, host.PortPath(portID))
	return ok
}

// BindPort binds portID and claims the returned capability.
func (k Keeper) BindPort(ctx sdk.Context, portID string) error {
	capability := k.portKeeper.BindPort(ctx, portID)
	return k.ClaimCapability(ctx, capability, host.PortPath(portID))
}

// AuthenticateCapability wraps the scoped keeper's AuthenticateCapability function
func (k Keeper) AuthenticateCapability(ctx sdk.Context, cap *capabilitytypes.Capability, name string) bool {
	return k.scopedKeeper.AuthenticateCapability(ctx, cap, name)
}

// ClaimCapability allows the nft-transfer module to claim a capability that the IBC
// module passes to it
func (k Keeper) ClaimCapability(ctx sdk.Context, cap *capabilitytypes.Capability, name string) error {
	return k.scopedKeeper.ClaimCapability(ctx, cap, name)
}
