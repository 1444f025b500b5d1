package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cosmossdk.io/collections"
	"cosmossdk.io/core/store"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var _ types.NFTKeeper = &NFTKeeper{}

// ErrTokenNotFound is returned when transferring a token that was never minted.
var ErrTokenNotFound = errors.New("token not found")

// TransferCall records one NFTKeeper.Transfer invocation, successful or not.
type TransferCall struct {
	Contract string
	TokenID  string
	Receiver sdk.AccAddress
	Err      error
}

// NFTKeeper is a store-backed asset module. Ownership lives in the context's store, so
// a transfer made in a discarded cache context is rolled back like a real one.
type NFTKeeper struct {
	owners    collections.Map[collections.Pair[string, string], []byte]
	classURIs collections.Map[string, string]
	tokenURIs collections.Map[collections.Pair[string, string], string]

	mu        sync.Mutex
	rejectTo  map[string]error
	rejectTok map[string]error
	panicOn   map[string]struct{}
	calls     []TransferCall
}

// NewNFTKeeper registers the asset collections on storeService.
func NewNFTKeeper(storeService store.KVStoreService) *NFTKeeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := &NFTKeeper{
		owners: collections.NewMap(sb, collections.NewPrefix(0), "owners",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey), collections.BytesValue),
		classURIs: collections.NewMap(sb, collections.NewPrefix(1), "class_uris",
			collections.StringKey, collections.StringValue),
		tokenURIs: collections.NewMap(sb, collections.NewPrefix(2), "token_uris",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey), collections.StringValue),
		rejectTo:  make(map[string]error),
		rejectTok: make(map[string]error),
		panicOn:   make(map[string]struct{}),
	}
	if _, err := sb.Build(); err != nil {
		panic(fmt.Errorf("failed to build nft schema: %w", err))
	}
	return k
}

// Mint creates tokenIDs of contract owned by owner. Token uris are derived from the ids.
func (k *NFTKeeper) Mint(ctx context.Context, contract string, owner sdk.AccAddress, tokenIDs ...string) error {
	if err := k.classURIs.Set(ctx, contract, "ipfs://"+contract); err != nil {
		return err
	}
	for _, tokenID := range tokenIDs {
		key := collections.Join(contract, tokenID)
		if has, err := k.owners.Has(ctx, key); err != nil {
			return err
		} else if has {
			return fmt.Errorf("token %s/%s already minted", contract, tokenID)
		}
		if err := k.owners.Set(ctx, key, owner); err != nil {
			return err
		}
		if err := k.tokenURIs.Set(ctx, key, fmt.Sprintf("ipfs://%s/%s", contract, tokenID)); err != nil {
			return err
		}
	}
	return nil
}

// RejectTransfersTo makes every transfer to receiver fail with err. A nil err clears it.
func (k *NFTKeeper) RejectTransfersTo(receiver sdk.AccAddress, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err == nil {
		delete(k.rejectTo, receiver.String())
		return
	}
	k.rejectTo[receiver.String()] = err
}

// RejectToken makes every transfer of contract/tokenID fail with err. A nil err clears it.
func (k *NFTKeeper) RejectToken(contract, tokenID string, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err == nil {
		delete(k.rejectTok, contract+"/"+tokenID)
		return
	}
	k.rejectTok[contract+"/"+tokenID] = err
}

// PanicOn makes every transfer of contract/tokenID panic.
func (k *NFTKeeper) PanicOn(contract, tokenID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.panicOn[contract+"/"+tokenID] = struct{}{}
}

// Calls returns every Transfer invocation so far.
func (k *NFTKeeper) Calls() []TransferCall {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]TransferCall(nil), k.calls...)
}

// Transfer moves contract/tokenID to receiver.
func (k *NFTKeeper) Transfer(ctx context.Context, contract, tokenID string, receiver sdk.AccAddress) (err error) {
	defer func() {
		k.mu.Lock()
		k.calls = append(k.calls, TransferCall{Contract: contract, TokenID: tokenID, Receiver: receiver, Err: err})
		k.mu.Unlock()
	}()

	k.mu.Lock()
	_, panics := k.panicOn[contract+"/"+tokenID]
	rejected, ok := k.rejectTo[receiver.String()]
	if !ok {
		rejected, ok = k.rejectTok[contract+"/"+tokenID]
	}
	k.mu.Unlock()
	if panics {
		panic(fmt.Sprintf("transfer of %s/%s panicked", contract, tokenID))
	}
	if ok {
		return rejected
	}

	key := collections.Join(contract, tokenID)
	has, err := k.owners.Has(ctx, key)
	if err != nil {
		return err
	}
	if !has {
		return fmt.Errorf("%w: %s/%s", ErrTokenNotFound, contract, tokenID)
	}
	return k.owners.Set(ctx, key, receiver)
}

// GetOwner returns the owner of contract/tokenID, or nil.
func (k *NFTKeeper) GetOwner(ctx context.Context, contract, tokenID string) sdk.AccAddress {
	owner, err := k.owners.Get(ctx, collections.Join(contract, tokenID))
	if err != nil {
		return nil
	}
	return owner
}

// GetClassURI returns the uri recorded for contract at mint time.
func (k *NFTKeeper) GetClassURI(ctx context.Context, contract string) string {
	uri, err := k.classURIs.Get(ctx, contract)
	if err != nil {
		return ""
	}
	return uri
}

// GetTokenURI returns the uri of contract/tokenID.
func (k *NFTKeeper) GetTokenURI(ctx context.Context, contract, tokenID string) string {
	uri, err := k.tokenURIs.Get(ctx, collections.Join(contract, tokenID))
	if err != nil {
		return ""
	}
	return uri
}
