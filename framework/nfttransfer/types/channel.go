package types

import (
	errorsmod "cosmossdk.io/errors"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// Endpoint identifies one end of a channel.
type Endpoint struct {
	PortID    string `json:"port_id" cbor:"1,keyasint"`
	ChannelID string `json:"channel_id" cbor:"2,keyasint"`
}

// ChannelInfo is the identity of one handshake-complete channel. It is written
// once, when the channel connects, and never changes afterwards.
type ChannelInfo struct {
	ChannelID            string   `json:"channel_id" cbor:"1,keyasint"`
	CounterpartyEndpoint Endpoint `json:"counterparty_endpoint" cbor:"2,keyasint"`
	ConnectionID         string   `json:"connection_id" cbor:"3,keyasint"`
}

// Validate performs a stateless check of the channel info.
func (ci ChannelInfo) Validate() error {
	if ci.ChannelID == "" {
		return errorsmod.Wrap(ErrInvalidGenesis, "channel id cannot be blank")
	}
	if ci.CounterpartyEndpoint.PortID == "" || ci.CounterpartyEndpoint.ChannelID == "" {
		return errorsmod.Wrapf(ErrInvalidGenesis, "channel %s has an incomplete counterparty", ci.ChannelID)
	}
	if ci.ConnectionID == "" {
		return errorsmod.Wrapf(ErrInvalidGenesis, "channel %s has no connection", ci.ChannelID)
	}
	return nil
}

// ValidateChannelOrder rejects every ordering except UNORDERED.
func ValidateChannelOrder(order channeltypes.Order) error {
	if order != channeltypes.UNORDERED {
		return errorsmod.Wrapf(ErrInvalidChannelOrdering, "expected %s channel, got %s", channeltypes.UNORDERED, order)
	}
	return nil
}

// ValidateVersion rejects every version except Version. An empty version is not
// replaced by a default.
func ValidateVersion(version string) error {
	if version != Version {
		return errorsmod.Wrapf(ErrInvalidVersion, "expected %s, got %q", Version, version)
	}
	return nil
}
