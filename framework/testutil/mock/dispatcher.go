package mock

import (
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/celestiaorg/ics721/framework/nfttransfer/keeper"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var _ keeper.Dispatcher = &Dispatcher{}

// Dispatcher records dispatched transfers without running them.
type Dispatcher struct {
	mu        sync.Mutex
	transfers []types.DeferredTransfer
	err       error
}

// FailWith makes Dispatch fail with err. A nil err clears it.
func (d *Dispatcher) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *Dispatcher) Dispatch(_ sdk.Context, transfer types.DeferredTransfer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.transfers = append(d.transfers, transfer)
	return nil
}

// Transfers returns everything dispatched so far.
func (d *Dispatcher) Transfers() []types.DeferredTransfer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]types.DeferredTransfer(nil), d.transfers...)
}

// Last returns the most recent transfer and whether there is one.
func (d *Dispatcher) Last() (types.DeferredTransfer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transfers) == 0 {
		return types.DeferredTransfer{}, false
	}
	return d.transfers[len(d.transfers)-1], true
}

// Reset forgets every recorded transfer.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.transfers = nil
}
