package types

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// EscrowEntry marks one token as represented on the counterparty of ChannelID.
type EscrowEntry struct {
	ChannelID string `json:"channel_id"`
	Contract  string `json:"contract"`
	TokenID   string `json:"token_id"`
}

func (e EscrowEntry) String() string {
	return fmt.Sprintf("%s/%s/%s", e.ChannelID, e.Contract, e.TokenID)
}

// Validate performs a stateless check of the entry.
func (e EscrowEntry) Validate() error {
	if e.ChannelID == "" || e.Contract == "" || e.TokenID == "" {
		return errorsmod.Wrapf(ErrInvalidGenesis, "incomplete escrow entry %s", e)
	}
	return nil
}

// LockState tracks whether the local lock of a send has been observed.
type LockState uint8

const (
	LockPending LockState = iota + 1
	LockConfirmed
)

func (s LockState) String() string {
	switch s {
	case LockPending:
		return "pending"
	case LockConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// OutboundTransfer is a send whose packet has not been acknowledged or timed out yet.
type OutboundTransfer struct {
	ChannelID string    `json:"channel_id" cbor:"1,keyasint"`
	Sequence  uint64    `json:"sequence" cbor:"2,keyasint"`
	Contract  string    `json:"contract" cbor:"3,keyasint"`
	TokenIDs  []string  `json:"token_ids" cbor:"4,keyasint"`
	Sender    string    `json:"sender" cbor:"5,keyasint"`
	State     LockState `json:"state" cbor:"6,keyasint"`
}

// Validate performs a stateless check of the outbound transfer.
func (o OutboundTransfer) Validate() error {
	if o.ChannelID == "" || o.Sequence == 0 || o.Contract == "" {
		return errorsmod.Wrapf(ErrInvalidGenesis, "incomplete outbound transfer %s/%d", o.ChannelID, o.Sequence)
	}
	if err := ValidateTokenIDs(o.TokenIDs); err != nil {
		return errorsmod.Wrapf(ErrInvalidGenesis, "outbound transfer %s/%d: %s", o.ChannelID, o.Sequence, err)
	}
	if o.State != LockPending && o.State != LockConfirmed {
		return errorsmod.Wrapf(ErrInvalidGenesis, "outbound transfer %s/%d has state %d", o.ChannelID, o.Sequence, o.State)
	}
	return nil
}
