package types

import (
	"crypto/sha256"
	"fmt"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the IBC nft-transfer name
	ModuleName = "nonfungibletokentransfer"

	// Version defines the only ICS-721 version this module speaks. There is no
	// version negotiation: both ends must propose exactly this value.
	Version = "ics721-1"

	// PortID is the default port id that nft-transfer module binds to
	PortID = "nft-transfer"

	// StoreKey is the store key string for IBC nft-transfer
	StoreKey = ModuleName
)

var (
	// ParamsKey stores the module params.
	ParamsKey = collections.NewPrefix(0)
	// ChannelInfoKey stores one ChannelInfo per handshake-complete channel.
	ChannelInfoKey = collections.NewPrefix(1)
	// EscrowKey stores the escrow set keyed by (channel, contract, token).
	EscrowKey = collections.NewPrefix(2)
	// OutboundKey stores in-flight sends keyed by (channel, sequence).
	OutboundKey = collections.NewPrefix(3)
)

// GetEscrowAddress returns the escrow address for the specified channel.
// The escrow address follows the format as outlined in ADR 028:
// https://github.com/cosmos/cosmos-sdk/blob/main/docs/architecture/adr-028-public-key-addresses.md
func GetEscrowAddress(portID, channelID string) sdk.AccAddress {
	// a slash is used to create domain separation between port and channel identifiers to
	// prevent address collisions between escrow addresses created for different channels
	contents := fmt.Sprintf("%s/%s", portID, channelID)

	preImage := []byte(Version)
	preImage = append(preImage, 0)
	preImage = append(preImage, contents...)
	hash := sha256.Sum256(preImage)
	return hash[:20]
}
