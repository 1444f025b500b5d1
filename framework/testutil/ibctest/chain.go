package ibctest

import (
	"fmt"
	"sync"
	"testing"
	"time"

	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"

	"github.com/celestiaorg/ics721/framework/ibc"
	"github.com/celestiaorg/ics721/framework/testutil/mock"
)

// GenesisTime is the block time every chain starts at.
var GenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const ibcStoreKey = "ibc"

var _ ibc.Chain = &Chain{}

// Chain is an in-process chain: one multistore, a mocked IBC core and the
// applications bound to its ports.
type Chain struct {
	ChainID string
	Core    *mock.IBCCore

	mu          sync.Mutex
	ctx         sdk.Context
	keys        map[string]*storetypes.KVStoreKey
	modules     map[string]porttypes.IBCModule
	nextChannel int
}

// NewChain creates a chain with a store for the IBC core and one for each of
// storeNames.
func NewChain(t testing.TB, chainID string, storeNames ...string) *Chain {
	t.Helper()

	keys := storetypes.NewKVStoreKeys(append([]string{ibcStoreKey}, storeNames...)...)
	ctx := testutil.DefaultContextWithKeys(keys, nil, nil).
		WithBlockHeader(cmtproto.Header{
			ChainID: chainID,
			Height:  1,
			Time:    GenesisTime,
		})

	return &Chain{
		ChainID: chainID,
		Core:    mock.NewIBCCore(runtime.NewKVStoreService(keys[ibcStoreKey])),
		ctx:     ctx,
		keys:    keys,
		modules: make(map[string]porttypes.IBCModule),
	}
}

// StoreKey returns the key registered for name.
func (c *Chain) StoreKey(name string) *storetypes.KVStoreKey {
	key, ok := c.keys[name]
	if !ok {
		panic(fmt.Sprintf("store %s is not mounted on %s", name, c.ChainID))
	}
	return key
}

// Bind routes packets for portID to app.
func (c *Chain) Bind(portID string, app porttypes.IBCModule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[portID] = app
}

// NextBlock moves the chain one block and d forward.
func (c *Chain) NextBlock(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	header := c.ctx.BlockHeader()
	header.Height++
	header.Time = header.Time.Add(d)
	c.ctx = c.ctx.WithBlockHeader(header)
}

func (c *Chain) GetChainID() string {
	return c.ChainID
}

// Context returns a context at the chain's latest block with a fresh event manager.
func (c *Chain) Context() sdk.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.WithEventManager(sdk.NewEventManager())
}

func (c *Chain) Module(portID string) (porttypes.IBCModule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	app, ok := c.modules[portID]
	return app, ok
}

func (c *Chain) NextChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := channeltypes.FormatChannelIdentifier(uint64(c.nextChannel))
	c.nextChannel++
	return id
}

func (c *Chain) SetChannel(portID, channelID string, channel channeltypes.Channel) {
	c.Core.SetChannel(portID, channelID, channel)
}

func (c *Chain) GetChannel(ctx sdk.Context, portID, channelID string) (channeltypes.Channel, bool) {
	return c.Core.GetChannel(ctx, portID, channelID)
}

func (c *Chain) NewChannelCapability(portID, channelID string) *capabilitytypes.Capability {
	return c.Core.NewChannelCapability(portID, channelID)
}

func (c *Chain) PendingPackets(ctx sdk.Context, portID, channelID string) ([]channeltypes.Packet, error) {
	return c.Core.PendingPackets(ctx, portID, channelID)
}

func (c *Chain) DeletePacket(ctx sdk.Context, portID, channelID string, sequence uint64) error {
	return c.Core.DeletePacket(ctx, portID, channelID, sequence)
}
