package ibctest

import (
	"testing"

	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/celestiaorg/ics721/framework/config"
	"github.com/celestiaorg/ics721/framework/nfttransfer"
	"github.com/celestiaorg/ics721/framework/nfttransfer/keeper"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
	"github.com/celestiaorg/ics721/framework/testutil/mock"
)

const nftStoreKey = "nft"

// NFTChain is the home chain of the tokens, running the nft-transfer module.
type NFTChain struct {
	*Chain

	NFT       *mock.NFTKeeper
	Keeper    keeper.Keeper
	Executor  *nfttransfer.Executor
	App       nfttransfer.IBCModule
	MsgServer nfttransfer.MsgServer
}

// NewNFTChain creates a chain with the nft-transfer module initialised from the
// default configuration and bound to types.PortID.
func NewNFTChain(t testing.TB, chainID string) *NFTChain {
	t.Helper()
	return NewNFTChainWithConfig(t, chainID, config.Default())
}

// NewNFTChainWithConfig creates a chain whose module params come from cfg. The
// application is bound to the configured port.
func NewNFTChainWithConfig(t testing.TB, chainID string, cfg config.Config) *NFTChain {
	t.Helper()

	genesis, err := cfg.Genesis()
	require.NoError(t, err)

	chain := NewChain(t, chainID, types.StoreKey, nftStoreKey)
	// the configured level applies, output goes to the test log
	logger, err := cfg.Log.Logger(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zaptest.NewLogger(t, zaptest.Level(core)).Core()
	}))
	require.NoError(t, err)
	logger = logger.Named(chainID)

	nft := mock.NewNFTKeeper(runtime.NewKVStoreService(chain.StoreKey(nftStoreKey)))
	executor := nfttransfer.NewExecutor(logger, nft)
	k := keeper.NewKeeper(
		logger,
		runtime.NewKVStoreService(chain.StoreKey(types.StoreKey)),
		chain.Core, chain.Core, chain.Core, chain.Core,
		nft,
		executor,
	)
	require.NoError(t, k.InitGenesis(chain.Context(), genesis))

	app := nfttransfer.NewIBCModule(k, executor)
	chain.Bind(genesis.Params.PortID, app)

	return &NFTChain{
		Chain:     chain,
		NFT:       nft,
		Keeper:    k,
		Executor:  executor,
		App:       app,
		MsgServer: nfttransfer.NewMsgServer(k, executor),
	}
}
