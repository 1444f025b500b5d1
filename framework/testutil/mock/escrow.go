package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/celestiaorg/ics721/framework/nfttransfer/keeper"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var _ keeper.EscrowStore = &EscrowStore{}

// EscrowStore is a map backed escrow ledger. It is not rolled back with cached
// contexts.
type EscrowStore struct {
	mu      sync.Mutex
	entries map[types.EscrowEntry]struct{}
	err     error
}

// NewEscrowStore creates an empty EscrowStore.
func NewEscrowStore() *EscrowStore {
	return &EscrowStore{entries: make(map[types.EscrowEntry]struct{})}
}

// FailWith makes every call fail with err. A nil err clears it.
func (s *EscrowStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *EscrowStore) Has(_ context.Context, entry types.EscrowEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.entries[entry]
	return ok, nil
}

func (s *EscrowStore) Set(_ context.Context, entry types.EscrowEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries[entry] = struct{}{}
	return nil
}

func (s *EscrowStore) Remove(_ context.Context, entry types.EscrowEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	delete(s.entries, entry)
	return nil
}

func (s *EscrowStore) Entries(ctx context.Context, channelID string) ([]types.EscrowEntry, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var entries []types.EscrowEntry
	for _, entry := range all {
		if entry.ChannelID == channelID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *EscrowStore) All(_ context.Context) ([]types.EscrowEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	entries := make([]types.EscrowEntry, 0, len(s.entries))
	for entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].String() < entries[j].String()
	})
	return entries, nil
}
