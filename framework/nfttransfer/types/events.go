package types

// IBC nft-transfer events
const (
	EventTypeTransfer     = "ibc_nft_transfer"
	EventTypePacket       = "non_fungible_token_packet"
	EventTypeTimeout      = "timeout"
	EventTypeRefund       = "refund"
	EventTypeChannelOpen  = "channel_open"
	EventTypeDeliveryFail = "delivery_failed"

	AttributeKeySender     = "sender"
	AttributeKeyReceiver   = "receiver"
	AttributeKeyClassID    = "class_id"
	AttributeKeyContract   = "contract"
	AttributeKeyTokenIDs   = "token_ids"
	AttributeKeyChannel    = "channel"
	AttributeKeySequence   = "sequence"
	AttributeKeyAckSuccess = "success"
	AttributeKeyAckError   = "error"
)
