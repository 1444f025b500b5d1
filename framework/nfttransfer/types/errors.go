package types

import (
	errorsmod "cosmossdk.io/errors"
)

// x/nft-transfer module sentinel errors
var (
	ErrInvalidVersion          = errorsmod.Register(ModuleName, 2, "invalid ICS-721 version")
	ErrInvalidChannelOrdering  = errorsmod.Register(ModuleName, 3, "invalid channel ordering")
	ErrInvalidPort             = errorsmod.Register(ModuleName, 4, "invalid port")
	ErrInvalidPacket           = errorsmod.Register(ModuleName, 5, "invalid non-fungible token packet")
	ErrTokenListMismatch       = errorsmod.Register(ModuleName, 6, "token ids and token uris differ in length")
	ErrClassNotNative          = errorsmod.Register(ModuleName, 7, "tokens not native to this chain")
	ErrWrongPort               = errorsmod.Register(ModuleName, 8, "class id names the wrong port")
	ErrWrongChannel            = errorsmod.Register(ModuleName, 9, "class id names the wrong channel")
	ErrNotEscrowed             = errorsmod.Register(ModuleName, 10, "token is not escrowed on this channel")
	ErrInvalidAddress          = errorsmod.Register(ModuleName, 11, "invalid address")
	ErrUnauthorized            = errorsmod.Register(ModuleName, 12, "sender does not own token")
	ErrChannelNotFound         = errorsmod.Register(ModuleName, 13, "channel handshake not complete")
	ErrChannelCloseUnsupported = errorsmod.Register(ModuleName, 14, "channel close is not supported")
	ErrDispatchLimit           = errorsmod.Register(ModuleName, 15, "deferred operation already queued")
	ErrLockNotConfirmed        = errorsmod.Register(ModuleName, 16, "outbound lock has not been confirmed")
	ErrLockFailed              = errorsmod.Register(ModuleName, 17, "failed to lock tokens in escrow")
	ErrRefundFailed            = errorsmod.Register(ModuleName, 18, "failed to refund tokens")
	ErrDeliveryFailed          = errorsmod.Register(ModuleName, 19, "failed to deliver tokens")
	ErrOutboundNotFound        = errorsmod.Register(ModuleName, 20, "outbound transfer not found")
	ErrInvalidAcknowledgement  = errorsmod.Register(ModuleName, 21, "invalid acknowledgement")
	ErrSendDisabled            = errorsmod.Register(ModuleName, 22, "sending non-fungible tokens is disabled")
	ErrReceiveDisabled         = errorsmod.Register(ModuleName, 23, "receiving non-fungible tokens is disabled")
	ErrTooManyTokens           = errorsmod.Register(ModuleName, 24, "too many tokens in one packet")
	ErrInvalidClassID          = errorsmod.Register(ModuleName, 25, "invalid class id")
	ErrReceivePanic            = errorsmod.Register(ModuleName, 26, "packet receive aborted")
	ErrInvalidGenesis          = errorsmod.Register(ModuleName, 27, "invalid genesis state")
	ErrChannelExists           = errorsmod.Register(ModuleName, 28, "channel already connected")
)
