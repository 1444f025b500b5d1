package types

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
)

const (
	// DefaultMaxTokensPerPacket bounds the work one receive can trigger.
	DefaultMaxTokensPerPacket = 64
	// DefaultRelativeTimeout applies when a transfer sets neither timeout.
	DefaultRelativeTimeout = 10 * time.Minute
)

// Params defines the parameters for the nft-transfer module.
type Params struct {
	PortID             string        `json:"port_id" cbor:"1,keyasint"`
	SendEnabled        bool          `json:"send_enabled" cbor:"2,keyasint"`
	ReceiveEnabled     bool          `json:"receive_enabled" cbor:"3,keyasint"`
	MaxTokensPerPacket uint32        `json:"max_tokens_per_packet" cbor:"4,keyasint"`
	DefaultTimeout     time.Duration `json:"default_timeout" cbor:"5,keyasint"`
}

// DefaultParams is the default parameter configuration for the nft-transfer module
func DefaultParams() Params {
	return Params{
		PortID:             PortID,
		SendEnabled:        true,
		ReceiveEnabled:     true,
		MaxTokensPerPacket: DefaultMaxTokensPerPacket,
		DefaultTimeout:     DefaultRelativeTimeout,
	}
}

// Validate all nft-transfer module parameters
func (p Params) Validate() error {
	if err := host.PortIdentifierValidator(p.PortID); err != nil {
		return errorsmod.Wrap(ErrInvalidPort, err.Error())
	}
	if p.DefaultTimeout <= 0 {
		return errorsmod.Wrapf(ErrInvalidGenesis, "default timeout must be positive, got %s", p.DefaultTimeout)
	}
	return nil
}
