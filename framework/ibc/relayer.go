package ibc

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
)

// Chain is one end of a channel as driven by a relayer: its current context, the
// applications bound to its ports and its channel and packet state.
type Chain interface {
	GetChainID() string
	Context() sdk.Context

	// Module returns the application bound to portID.
	Module(portID string) (porttypes.IBCModule, bool)

	// NextChannelID allocates a channel identifier.
	NextChannelID() string
	SetChannel(portID, channelID string, channel channeltypes.Channel)
	GetChannel(ctx sdk.Context, portID, channelID string) (channeltypes.Channel, bool)
	NewChannelCapability(portID, channelID string) *capabilitytypes.Capability

	// PendingPackets returns the packets sent on portID/channelID and not yet
	// acknowledged or timed out.
	PendingPackets(ctx sdk.Context, portID, channelID string) ([]channeltypes.Packet, error)
	DeletePacket(ctx sdk.Context, portID, channelID string, sequence uint64) error
}

// PacketAck is one packet delivered to the destination with the acknowledgement it
// produced.
type PacketAck struct {
	Packet channeltypes.Packet
	Ack    []byte
	// Success is the destination application's verdict.
	Success bool
}

// RelayResult summarises one relay pass.
type RelayResult struct {
	Acknowledged []PacketAck
	TimedOut     []channeltypes.Packet
}

// Relayer interface defines the operations for an IBC relayer.
type Relayer interface {
	// CreateChannel runs the four step channel handshake between the chains.
	CreateChannel(ctx context.Context, chainA, chainB Chain, connection Connection, opts CreateChannelOptions) (*Channel, error)

	// CloseChannel starts closing the channel on chain.
	CloseChannel(ctx context.Context, chain Chain, channel Channel) error

	// RelayPackets delivers every pending packet of channel from src to dst and
	// relays the acknowledgements back, timing out the expired ones.
	RelayPackets(ctx context.Context, src, dst Chain, channel Channel) (RelayResult, error)
}
