package mock

import (
	"fmt"
	"sync"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var (
	_ types.ChannelKeeper = &IBCCore{}
	_ types.ICS4Wrapper   = &IBCCore{}
	_ types.PortKeeper    = &IBCCore{}
	_ types.ScopedKeeper  = &IBCCore{}
)

type packetKey = collections.Triple[string, string, uint64]

// IBCCore stands in for the channel, port and capability keepers of ibc-go. Channel
// ends and capabilities are held in memory; sequences and packet commitments live in
// the store so an aborted send leaves no commitment behind.
type IBCCore struct {
	sequences   collections.Map[collections.Pair[string, string], uint64]
	commitments collections.Map[packetKey, channeltypes.Packet]

	mu           sync.Mutex
	channels     map[string]channeltypes.Channel
	capabilities map[string]*capabilitytypes.Capability
	capIndex     uint64
	sendErr      error
}

// NewIBCCore registers the packet collections on storeService.
func NewIBCCore(storeService store.KVStoreService) *IBCCore {
	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
	sb := collections.NewSchemaBuilder(storeService)
	c := &IBCCore{
		sequences: collections.NewMap(sb, collections.NewPrefix(0), "next_sequence_send",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey), collections.Uint64Value),
		commitments: collections.NewMap(sb, collections.NewPrefix(1), "commitments",
			collections.TripleKeyCodec(collections.StringKey, collections.StringKey, collections.Uint64Key),
			codec.CollValue[channeltypes.Packet](cdc)),
		channels:     make(map[string]channeltypes.Channel),
		capabilities: make(map[string]*capabilitytypes.Capability),
	}
	if _, err := sb.Build(); err != nil {
		panic(fmt.Errorf("failed to build ibc core schema: %w", err))
	}
	return c
}

// SetChannel stores the channel end of portID/channelID.
func (c *IBCCore) SetChannel(portID, channelID string, channel channeltypes.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[host.ChannelPath(portID, channelID)] = channel
}

// GetChannel implements types.ChannelKeeper.
func (c *IBCCore) GetChannel(_ sdk.Context, portID, channelID string) (channeltypes.Channel, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	channel, ok := c.channels[host.ChannelPath(portID, channelID)]
	return channel, ok
}

// NewChannelCapability mints the capability the core hands to the module during the
// handshake of portID/channelID.
func (c *IBCCore) NewChannelCapability(portID, channelID string) *capabilitytypes.Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capIndex++
	return capabilitytypes.NewCapability(c.capIndex)
}

// FailSends makes every SendPacket fail with err. A nil err clears it.
func (c *IBCCore) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// SendPacket implements types.ICS4Wrapper.
func (c *IBCCore) SendPacket(
	ctx sdk.Context,
	chanCap *capabilitytypes.Capability,
	sourcePort string,
	sourceChannel string,
	timeoutHeight clienttypes.Height,
	timeoutTimestamp uint64,
	data []byte,
) (uint64, error) {
	c.mu.Lock()
	sendErr := c.sendErr
	c.mu.Unlock()
	if sendErr != nil {
		return 0, sendErr
	}

	channel, found := c.GetChannel(ctx, sourcePort, sourceChannel)
	if !found {
		return 0, fmt.Errorf("%w: port %s channel %s", channeltypes.ErrChannelNotFound, sourcePort, sourceChannel)
	}
	if channel.State != channeltypes.OPEN {
		return 0, fmt.Errorf("%w: channel %s is %s", channeltypes.ErrInvalidChannelState, sourceChannel, channel.State)
	}
	if !c.AuthenticateCapability(ctx, chanCap, host.ChannelCapabilityPath(sourcePort, sourceChannel)) {
		return 0, channeltypes.ErrChannelCapabilityNotFound
	}
	if timeoutHeight.IsZero() && timeoutTimestamp == 0 {
		return 0, channeltypes.ErrInvalidPacket
	}

	seqKey := collections.Join(sourcePort, sourceChannel)
	sequence, err := c.sequences.Get(ctx, seqKey)
	if err != nil {
		sequence = 1
	}
	if err := c.sequences.Set(ctx, seqKey, sequence+1); err != nil {
		return 0, err
	}

	packet := channeltypes.NewPacket(
		data, sequence,
		sourcePort, sourceChannel,
		channel.Counterparty.PortId, channel.Counterparty.ChannelId,
		timeoutHeight, timeoutTimestamp,
	)
	if err := c.commitments.Set(ctx, collections.Join3(sourcePort, sourceChannel, sequence), packet); err != nil {
		return 0, err
	}
	return sequence, nil
}

// PendingPackets returns the committed packets of portID/channelID ordered by sequence.
func (c *IBCCore) PendingPackets(ctx sdk.Context, portID, channelID string) ([]channeltypes.Packet, error) {
	iter, err := c.commitments.Iterate(ctx, collections.NewSuperPrefixedTripleRange[string, string, uint64](portID, channelID))
	if err != nil {
		return nil, err
	}
	return iter.Values()
}

// DeletePacket clears the commitment of an acknowledged or timed out packet.
func (c *IBCCore) DeletePacket(ctx sdk.Context, portID, channelID string, sequence uint64) error {
	return c.commitments.Remove(ctx, collections.Join3(portID, channelID, sequence))
}

// BindPort implements types.PortKeeper.
func (c *IBCCore) BindPort(_ sdk.Context, portID string) *capabilitytypes.Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capIndex++
	return capabilitytypes.NewCapability(c.capIndex)
}

// GetCapability implements types.ScopedKeeper.
func (c *IBCCore) GetCapability(_ sdk.Context, name string) (*capabilitytypes.Capability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	capability, ok := c.capabilities[name]
	return capability, ok
}

// AuthenticateCapability implements types.ScopedKeeper.
func (c *IBCCore) AuthenticateCapability(_ sdk.Context, capability *capabilitytypes.Capability, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	owned, ok := c.capabilities[name]
	return ok && capability != nil && owned == capability
}

// ClaimCapability implements types.ScopedKeeper.
func (c *IBCCore) ClaimCapability(_ sdk.Context, capability *capabilitytypes.Capability, name string) error {
	if capability == nil {
		return fmt.Errorf("nil capability for %s", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if owned, ok := c.capabilities[name]; ok && owned != capability {
		return fmt.Errorf("%w: %s", capabilitytypes.ErrOwnerClaimed, name)
	}
	c.capabilities[name] = capability
	return nil
}
