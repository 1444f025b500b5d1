package types

import (
	errorsmod "cosmossdk.io/errors"
)

// GenesisState defines the nft-transfer genesis state
type GenesisState struct {
	Params   Params             `json:"params"`
	Channels []ChannelInfo      `json:"channels"`
	Escrow   []EscrowEntry      `json:"escrow"`
	Outbound []OutboundTransfer `json:"outbound"`
}

// DefaultGenesisState returns a GenesisState with default params and no state.
func DefaultGenesisState() *GenesisState {
	return &GenesisState{
		Params: DefaultParams(),
	}
}

// Validate performs basic genesis state validation. Escrow entries and pending sends
// must reference a known channel.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	channels := make(map[string]struct{}, len(gs.Channels))
	for _, ci := range gs.Channels {
		if err := ci.Validate(); err != nil {
			return err
		}
		if _, ok := channels[ci.ChannelID]; ok {
			return errorsmod.Wrapf(ErrInvalidGenesis, "duplicate channel %s", ci.ChannelID)
		}
		channels[ci.ChannelID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(gs.Escrow))
	for _, e := range gs.Escrow {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, ok := channels[e.ChannelID]; !ok {
			return errorsmod.Wrapf(ErrInvalidGenesis, "escrow entry %s on unknown channel", e)
		}
		if _, ok := seen[e.String()]; ok {
			return errorsmod.Wrapf(ErrInvalidGenesis, "duplicate escrow entry %s", e)
		}
		seen[e.String()] = struct{}{}
	}

	for _, o := range gs.Outbound {
		if err := o.Validate(); err != nil {
			return err
		}
		if _, ok := channels[o.ChannelID]; !ok {
			return errorsmod.Wrapf(ErrInvalidGenesis, "outbound transfer %s/%d on unknown channel", o.ChannelID, o.Sequence)
		}
	}
	return nil
}
