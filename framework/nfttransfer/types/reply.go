package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// ReplyKind is the correlation id routing a deferred operation's outcome back to the
// handler that dispatched it.
type ReplyKind uint8

const (
	ReplyOutboundLock ReplyKind = iota + 1
	ReplyInboundDelivery
	ReplyOutboundRefund
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyOutboundLock:
		return "outbound_lock"
	case ReplyInboundDelivery:
		return "inbound_delivery"
	case ReplyOutboundRefund:
		return "outbound_refund"
	default:
		return "unknown"
	}
}

// ReplyContext is carried by a deferred transfer and handed back with its outcome.
// The set of implementations is closed: OutboundLock, InboundDelivery, OutboundRefund.
type ReplyContext interface {
	Kind() ReplyKind
	isReplyContext()
}

// OutboundLock follows the lock of a send into escrow.
type OutboundLock struct {
	PortID    string
	ChannelID string
	Sequence  uint64
}

// InboundDelivery follows the release of received tokens. Its acknowledgement is
// still in flight and is patched if the delivery fails.
type InboundDelivery struct {
	Packet channeltypes.Packet
}

// OutboundRefund follows the return of tokens to the sender after an error
// acknowledgement or a timeout. There is no acknowledgement to patch.
type OutboundRefund struct {
	Packet   channeltypes.Packet
	TimedOut bool
}

func (OutboundLock) Kind() ReplyKind    { return ReplyOutboundLock }
func (InboundDelivery) Kind() ReplyKind { return ReplyInboundDelivery }
func (OutboundRefund) Kind() ReplyKind  { return ReplyOutboundRefund }

func (OutboundLock) isReplyContext()    {}
func (InboundDelivery) isReplyContext() {}
func (OutboundRefund) isReplyContext()  {}

// DeferredTransfer moves tokens of one local contract to a receiver. It runs after the
// dispatching handler has returned; its outcome comes back through Reply.
type DeferredTransfer struct {
	Reply    ReplyContext
	Contract string
	TokenIDs []string
	Receiver sdk.AccAddress
}
