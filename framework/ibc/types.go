package ibc

import (
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// Channel represents an IBC channel between two chains, seen from the chain that
// initiated it.
type Channel struct {
	ChannelID        string
	CounterpartyID   string
	PortID           string
	CounterpartyPort string
	State            string
	Order            ChannelOrder
	Version          string
}

// Counterparty returns the channel as seen from the other chain.
func (c Channel) Counterparty() Channel {
	return Channel{
		ChannelID:        c.CounterpartyID,
		CounterpartyID:   c.ChannelID,
		PortID:           c.CounterpartyPort,
		CounterpartyPort: c.PortID,
		State:            c.State,
		Order:            c.Order,
		Version:          c.Version,
	}
}

// Connection represents an IBC connection between two chains.
type Connection struct {
	ConnectionID         string
	CounterpartyID       string
	ClientID             string
	CounterpartyClientID string
	State                string
}

// CreateChannelOptions defines options for creating an IBC channel.
type CreateChannelOptions struct {
	SourcePortName string
	DestPortName   string
	Order          ChannelOrder
	Version        string
}

// ChannelOrder represents the ordering of an IBC channel.
type ChannelOrder string

const (
	OrderOrdered   ChannelOrder = "ordered"
	OrderUnordered ChannelOrder = "unordered"
)

// ToProto converts the order into its ibc-go enum. Unknown values map to NONE.
func (o ChannelOrder) ToProto() channeltypes.Order {
	switch o {
	case OrderOrdered:
		return channeltypes.ORDERED
	case OrderUnordered:
		return channeltypes.UNORDERED
	default:
		return channeltypes.NONE
	}
}
