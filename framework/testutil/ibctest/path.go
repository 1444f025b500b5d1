package ibctest

import (
	"context"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/celestiaorg/ics721/framework/config"
	"github.com/celestiaorg/ics721/framework/ibc"
	"github.com/celestiaorg/ics721/framework/ibc/relayer"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// Path connects an NFTChain to a chain running a Mirror.
type Path struct {
	Home        *NFTChain
	Counterpart *Chain
	Mirror      *Mirror
	Relayer     *relayer.Loopback
	Connection  ibc.Connection
	// Channel is seen from Home.
	Channel ibc.Channel
}

// NewPath creates both chains and the relayer. The channel is not opened.
func NewPath(t testing.TB) *Path {
	t.Helper()
	return NewPathWithConfig(t, config.Default())
}

// NewPathWithConfig is NewPath with the home module configured by cfg.
func NewPathWithConfig(t testing.TB, cfg config.Config) *Path {
	t.Helper()

	home := NewNFTChainWithConfig(t, "home-1", cfg)
	counterpart := NewChain(t, "mirror-1")
	mirror := NewMirror(counterpart)
	counterpart.Bind(types.PortID, mirror)

	return &Path{
		Home:        home,
		Counterpart: counterpart,
		Mirror:      mirror,
		Relayer:     relayer.NewLoopback(zaptest.NewLogger(t), sdk.AccAddress("relayer_____________")),
		Connection: ibc.Connection{
			ConnectionID:   "connection-0",
			CounterpartyID: "connection-0",
			State:          "STATE_OPEN",
		},
	}
}

// DefaultChannelOptions opens an unordered ics721-1 channel between the nft-transfer
// ports.
func DefaultChannelOptions() ibc.CreateChannelOptions {
	return ibc.CreateChannelOptions{
		SourcePortName: types.PortID,
		DestPortName:   types.PortID,
		Order:          ibc.OrderUnordered,
		Version:        types.Version,
	}
}

// Setup opens a channel with opts, initiated by Home.
func (p *Path) Setup(ctx context.Context, opts ibc.CreateChannelOptions) error {
	channel, err := p.Relayer.CreateChannel(ctx, p.Home, p.Counterpart, p.Connection, opts)
	if err != nil {
		return err
	}
	p.Channel = *channel
	return nil
}

// MustSetup opens the default channel.
func (p *Path) MustSetup(t testing.TB) {
	t.Helper()
	require.NoError(t, p.Setup(context.Background(), DefaultChannelOptions()))
}

// RelayHome relays the packets sent by Home.
func (p *Path) RelayHome(ctx context.Context) (ibc.RelayResult, error) {
	return p.Relayer.RelayPackets(ctx, p.Home, p.Counterpart, p.Channel)
}

// RelayCounterpart relays the packets sent by the mirror.
func (p *Path) RelayCounterpart(ctx context.Context) (ibc.RelayResult, error) {
	return p.Relayer.RelayPackets(ctx, p.Counterpart, p.Home, p.Channel.Counterparty())
}
