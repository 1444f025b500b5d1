package nfttransfer

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/ics721/framework/nfttransfer/keeper"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

// MsgServer is the local entry point for sending tokens.
type MsgServer struct {
	keeper   keeper.Keeper
	executor *Executor
}

// NewMsgServer returns a MsgServer sharing the executor of the IBC module.
func NewMsgServer(k keeper.Keeper, executor *Executor) MsgServer {
	return MsgServer{
		keeper:   k,
		executor: executor,
	}
}

// Transfer sends msg and locks its tokens. Nothing is committed unless the lock
// succeeds.
func (m MsgServer) Transfer(goCtx context.Context, msg *types.MsgTransfer) (*types.MsgTransferResponse, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	defer m.executor.Reset()

	cacheCtx, writeFn := ctx.CacheContext()
	sequence, err := m.keeper.Transfer(cacheCtx, msg)
	if err != nil {
		return nil, err
	}
	if _, err := settle(cacheCtx, m.keeper, m.executor); err != nil {
		return nil, err
	}
	writeFn()

	return &types.MsgTransferResponse{Sequence: sequence}, nil
}
