package keeper_test

import (
	"errors"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

func (s *KeeperTestSuite) TestOnReply() {
	errTransfer := errors.New("receiver refused the token")

	s.Run("lock success confirms the send", func() {
		s.SetupTest()
		s.openChannel("channel-0")
		packet := s.send("channel-0", contract, "1")

		ack, err := s.keeper.OnReply(s.ctx, types.OutboundLock{PortID: types.PortID, ChannelID: "channel-0", Sequence: packet.Sequence}, nil)
		s.Require().NoError(err)
		s.Require().Nil(ack)

		outbound, err := s.keeper.GetOutboundTransfer(s.ctx, "channel-0", packet.Sequence)
		s.Require().NoError(err)
		s.Require().Equal(types.LockConfirmed, outbound.State)
	})

	s.Run("lock failure aborts the send", func() {
		s.SetupTest()
		s.openChannel("channel-0")
		packet := s.send("channel-0", contract, "1")

		_, err := s.keeper.OnReply(s.ctx, types.OutboundLock{PortID: types.PortID, ChannelID: "channel-0", Sequence: packet.Sequence}, errTransfer)
		s.Require().ErrorIs(err, types.ErrLockFailed)
		s.Require().Contains(err.Error(), errTransfer.Error())
	})

	s.Run("lock of an unknown send", func() {
		s.SetupTest()
		_, err := s.keeper.OnReply(s.ctx, types.OutboundLock{PortID: types.PortID, ChannelID: "channel-0", Sequence: 3}, nil)
		s.Require().ErrorIs(err, types.ErrOutboundNotFound)
	})

	s.Run("delivery success keeps the acknowledgement", func() {
		s.SetupTest()
		packet := s.inboundPacket("channel-0", s.returnData("nft-transfer/channel-0/punks", "1"))

		ack, err := s.keeper.OnReply(s.ctx, types.InboundDelivery{Packet: packet}, nil)
		s.Require().NoError(err)
		s.Require().Nil(ack)
	})

	s.Run("delivery failure patches the acknowledgement", func() {
		s.SetupTest()
		packet := s.inboundPacket("channel-0", s.returnData("nft-transfer/channel-0/punks", "1"))

		ack, err := s.keeper.OnReply(s.ctx, types.InboundDelivery{Packet: packet}, errTransfer)
		s.Require().NoError(err)
		s.Require().NotNil(ack)
		s.requireErrorAck(*ack, types.ErrDeliveryFailed)
		s.Require().Contains(ack.GetError(), errTransfer.Error())
		s.requireEvent(types.EventTypeDeliveryFail)
	})

	s.Run("refund success", func() {
		s.SetupTest()
		packet := s.inboundPacket("channel-0", s.returnData("nft-transfer/channel-0/punks", "1"))

		ack, err := s.keeper.OnReply(s.ctx, types.OutboundRefund{Packet: packet}, nil)
		s.Require().NoError(err)
		s.Require().Nil(ack)
	})

	s.Run("refund failure fails the handler", func() {
		s.SetupTest()
		packet := s.inboundPacket("channel-0", s.returnData("nft-transfer/channel-0/punks", "1"))

		ack, err := s.keeper.OnReply(s.ctx, types.OutboundRefund{Packet: packet, TimedOut: true}, errTransfer)
		s.Require().ErrorIs(err, types.ErrRefundFailed)
		s.Require().Nil(ack)
	})
}
