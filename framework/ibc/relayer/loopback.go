package relayer

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
	"go.uber.org/zap"

	"github.com/celestiaorg/ics721/framework/ibc"
)

var _ ibc.Relayer = &Loopback{}

// Loopback relays between two in-process chains by calling their applications
// directly. Proofs and light clients are not involved.
type Loopback struct {
	log     *zap.Logger
	address sdk.AccAddress

	// acks holds acknowledgements written on the destination whose delivery to
	// the source failed, so a retry does not receive the packet twice.
	acks map[string]ibc.PacketAck
}

// NewLoopback creates a Loopback relayer signing as address.
func NewLoopback(logger *zap.Logger, address sdk.AccAddress) *Loopback {
	return &Loopback{
		log:     logger.With(zap.String("component", "loopback-relayer")),
		address: address,
		acks:    make(map[string]ibc.PacketAck),
	}
}

// CreateChannel runs OpenInit on chainA, OpenTry on chainB, OpenAck on chainA and
// OpenConfirm on chainB. A step failing aborts the handshake.
func (r *Loopback) CreateChannel(ctx context.Context, chainA, chainB ibc.Chain, connection ibc.Connection, opts ibc.CreateChannelOptions) (*ibc.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	appA, err := module(chainA, opts.SourcePortName)
	if err != nil {
		return nil, err
	}
	appB, err := module(chainB, opts.DestPortName)
	if err != nil {
		return nil, err
	}

	order := opts.Order.ToProto()
	portA, portB := opts.SourcePortName, opts.DestPortName
	chanA, chanB := chainA.NextChannelID(), chainB.NextChannelID()
	hopsA, hopsB := []string{connection.ConnectionID}, []string{connection.CounterpartyID}

	counterpartyOfA := channeltypes.NewCounterparty(portB, "")
	chainA.SetChannel(portA, chanA, channeltypes.NewChannel(channeltypes.INIT, order, counterpartyOfA, hopsA, opts.Version))
	version, err := appA.OnChanOpenInit(chainA.Context(), order, hopsA, portA, chanA,
		chainA.NewChannelCapability(portA, chanA), counterpartyOfA, opts.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to open init on %s: %w", chainA.GetChainID(), err)
	}

	counterpartyOfB := channeltypes.NewCounterparty(portA, chanA)
	chainB.SetChannel(portB, chanB, channeltypes.NewChannel(channeltypes.TRYOPEN, order, counterpartyOfB, hopsB, version))
	counterpartyVersion, err := appB.OnChanOpenTry(chainB.Context(), order, hopsB, portB, chanB,
		chainB.NewChannelCapability(portB, chanB), counterpartyOfB, version)
	if err != nil {
		return nil, fmt.Errorf("failed to open try on %s: %w", chainB.GetChainID(), err)
	}
	chainB.SetChannel(portB, chanB, channeltypes.NewChannel(channeltypes.TRYOPEN, order, counterpartyOfB, hopsB, counterpartyVersion))

	chainA.SetChannel(portA, chanA, channeltypes.NewChannel(channeltypes.OPEN, order,
		channeltypes.NewCounterparty(portB, chanB), hopsA, counterpartyVersion))
	if err := appA.OnChanOpenAck(chainA.Context(), portA, chanA, chanB, counterpartyVersion); err != nil {
		return nil, fmt.Errorf("failed to open ack on %s: %w", chainA.GetChainID(), err)
	}

	chainB.SetChannel(portB, chanB, channeltypes.NewChannel(channeltypes.OPEN, order, counterpartyOfB, hopsB, counterpartyVersion))
	if err := appB.OnChanOpenConfirm(chainB.Context(), portB, chanB); err != nil {
		return nil, fmt.Errorf("failed to open confirm on %s: %w", chainB.GetChainID(), err)
	}

	r.log.Info("channel created",
		zap.String("chain_a", chainA.GetChainID()),
		zap.String("channel_a", chanA),
		zap.String("chain_b", chainB.GetChainID()),
		zap.String("channel_b", chanB),
		zap.String("version", counterpartyVersion),
	)
	return &ibc.Channel{
		ChannelID:        chanA,
		CounterpartyID:   chanB,
		PortID:           portA,
		CounterpartyPort: portB,
		State:            channeltypes.OPEN.String(),
		Order:            opts.Order,
		Version:          counterpartyVersion,
	}, nil
}

// CloseChannel asks the application on chain to close channel. The channel end is
// only marked closed if the application accepts.
func (r *Loopback) CloseChannel(ctx context.Context, chain ibc.Chain, channel ibc.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	app, err := module(chain, channel.PortID)
	if err != nil {
		return err
	}
	if err := app.OnChanCloseInit(chain.Context(), channel.PortID, channel.ChannelID); err != nil {
		return fmt.Errorf("failed to close channel %s on %s: %w", channel.ChannelID, chain.GetChainID(), err)
	}

	end, found := chain.GetChannel(chain.Context(), channel.PortID, channel.ChannelID)
	if found {
		end.State = channeltypes.CLOSED
		chain.SetChannel(channel.PortID, channel.ChannelID, end)
	}
	return nil
}

// RelayPackets delivers the pending packets of channel in sequence order. An error
// from the source's acknowledgement or timeout callback stops the pass and leaves
// the packet pending for a later retry.
func (r *Loopback) RelayPackets(ctx context.Context, src, dst ibc.Chain, channel ibc.Channel) (ibc.RelayResult, error) {
	var result ibc.RelayResult

	srcApp, err := module(src, channel.PortID)
	if err != nil {
		return result, err
	}
	dstApp, err := module(dst, channel.CounterpartyPort)
	if err != nil {
		return result, err
	}

	packets, err := src.PendingPackets(src.Context(), channel.PortID, channel.ChannelID)
	if err != nil {
		return result, fmt.Errorf("failed to query pending packets on %s: %w", src.GetChainID(), err)
	}

	for _, packet := range packets {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		key := packetKey(src, packet)

		ack, received := r.acks[key]
		if !received && hasTimedOut(dst.Context(), packet) {
			if err := srcApp.OnTimeoutPacket(src.Context(), packet, r.address); err != nil {
				return result, fmt.Errorf("failed to time out packet %d on %s: %w", packet.Sequence, src.GetChainID(), err)
			}
			if err := src.DeletePacket(src.Context(), packet.SourcePort, packet.SourceChannel, packet.Sequence); err != nil {
				return result, err
			}
			r.log.Info("packet timed out", zap.String("chain", src.GetChainID()), zap.Uint64("sequence", packet.Sequence))
			result.TimedOut = append(result.TimedOut, packet)
			continue
		}

		if !received {
			written := dstApp.OnRecvPacket(dst.Context(), packet, r.address)
			if written == nil {
				return result, fmt.Errorf("packet %d on %s has no synchronous acknowledgement", packet.Sequence, dst.GetChainID())
			}
			ack = ibc.PacketAck{Packet: packet, Ack: written.Acknowledgement(), Success: written.Success()}
			r.acks[key] = ack
		}

		if err := srcApp.OnAcknowledgementPacket(src.Context(), packet, ack.Ack, r.address); err != nil {
			return result, fmt.Errorf("failed to acknowledge packet %d on %s: %w", packet.Sequence, src.GetChainID(), err)
		}
		delete(r.acks, key)
		if err := src.DeletePacket(src.Context(), packet.SourcePort, packet.SourceChannel, packet.Sequence); err != nil {
			return result, err
		}
		r.log.Info("packet relayed",
			zap.String("src", src.GetChainID()),
			zap.String("dst", dst.GetChainID()),
			zap.Uint64("sequence", packet.Sequence),
			zap.Bool("success", ack.Success),
		)
		result.Acknowledged = append(result.Acknowledged, ack)
	}
	return result, nil
}

func module(chain ibc.Chain, portID string) (porttypes.IBCModule, error) {
	app, ok := chain.Module(portID)
	if !ok {
		return nil, fmt.Errorf("no application bound to port %s on %s", portID, chain.GetChainID())
	}
	return app, nil
}

func packetKey(src ibc.Chain, packet channeltypes.Packet) string {
	return fmt.Sprintf("%s/%s/%s/%d", src.GetChainID(), packet.SourcePort, packet.SourceChannel, packet.Sequence)
}

// hasTimedOut checks the packet timeouts against the receiving chain's latest block.
func hasTimedOut(ctx sdk.Context, packet channeltypes.Packet) bool {
	if ts := packet.GetTimeoutTimestamp(); ts != 0 && uint64(ctx.BlockTime().UnixNano()) >= ts {
		return true
	}
	height := packet.TimeoutHeight
	return !height.IsZero() && uint64(ctx.BlockHeight()) >= height.RevisionHeight
}
