package nfttransfer

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/nfttransfer/keeper"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var _ keeper.Dispatcher = &Executor{}

// Outcome is the result of one executed deferred transfer.
type Outcome struct {
	Transfer types.DeferredTransfer
	Err      error
}

// Executor queues the deferred transfer of the handler being executed and runs it
// once the handler has returned. A handler may queue at most one transfer.
type Executor struct {
	log       *zap.Logger
	nftKeeper types.NFTKeeper
	queued    *types.DeferredTransfer
}

// NewExecutor creates an Executor moving tokens through nftKeeper.
func NewExecutor(logger *zap.Logger, nftKeeper types.NFTKeeper) *Executor {
	return &Executor{
		log:       logger.With(zap.String("component", "executor")),
		nftKeeper: nftKeeper,
	}
}

// Dispatch queues transfer.
func (e *Executor) Dispatch(_ sdk.Context, transfer types.DeferredTransfer) error {
	if e.queued != nil {
		return errorsmod.Wrapf(types.ErrDispatchLimit, "%s already queued", e.queued.Reply.Kind())
	}
	if transfer.Reply == nil {
		return fmt.Errorf("deferred transfer of %s has no reply context", transfer.Contract)
	}
	e.queued = &transfer
	return nil
}

// Pending reports whether a transfer is queued.
func (e *Executor) Pending() bool {
	return e.queued != nil
}

// Reset drops the queued transfer without running it.
func (e *Executor) Reset() {
	e.queued = nil
}

// Execute runs the queued transfer in a cached context, committing it only if every
// token moved. ok is false when nothing was queued.
func (e *Executor) Execute(ctx sdk.Context) (outcome Outcome, ok bool) {
	if e.queued == nil {
		return Outcome{}, false
	}
	transfer := *e.queued
	e.queued = nil

	cacheCtx, writeFn := ctx.CacheContext()
	for _, tokenID := range transfer.TokenIDs {
		if err := e.nftKeeper.Transfer(cacheCtx, transfer.Contract, tokenID, transfer.Receiver); err != nil {
			e.log.Warn("deferred transfer failed",
				zap.Stringer("reply", transfer.Reply.Kind()),
				zap.String("contract", transfer.Contract),
				zap.String("token_id", tokenID),
				zap.Error(err),
			)
			return Outcome{Transfer: transfer, Err: fmt.Errorf("failed to transfer %s/%s: %w", transfer.Contract, tokenID, err)}, true
		}
	}
	writeFn()

	e.log.Debug("deferred transfer executed",
		zap.Stringer("reply", transfer.Reply.Kind()),
		zap.String("contract", transfer.Contract),
		zap.Strings("token_ids", transfer.TokenIDs),
		zap.Stringer("receiver", transfer.Receiver),
	)
	return Outcome{Transfer: transfer}, true
}

// settle executes the transfer queued by the last handler and routes its outcome to
// the keeper.
func settle(ctx sdk.Context, k keeper.Keeper, e *Executor) (*channeltypes.Acknowledgement, error) {
	outcome, ok := e.Execute(ctx)
	if !ok {
		return nil, nil
	}
	return k.OnReply(ctx, outcome.Transfer.Reply, outcome.Err)
}
