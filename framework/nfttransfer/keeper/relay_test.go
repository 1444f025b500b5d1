package keeper_test

import (
	"errors"

	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

func (s *KeeperTestSuite) TestTransfer() {
	var msg *types.MsgTransfer

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"invalid message", func() { msg.TokenIDs = []string{"1", "1"} }, types.ErrInvalidPacket},
		{"send disabled", func() {
			params := types.DefaultParams()
			params.SendEnabled = false
			s.Require().NoError(s.keeper.SetParams(s.ctx, params))
		}, types.ErrSendDisabled},
		{"too many tokens", func() {
			params := types.DefaultParams()
			params.MaxTokensPerPacket = 1
			s.Require().NoError(s.keeper.SetParams(s.ctx, params))
		}, types.ErrTooManyTokens},
		{"not the bound port", func() { msg.SourcePort = "transfer" }, types.ErrInvalidPort},
		{"channel not connected", func() { msg.SourceChannel = "channel-9" }, types.ErrChannelNotFound},
		{"sender does not own token", func() {
			s.Require().NoError(s.nft.Mint(s.ctx, contract, s.receiver, "3"))
			msg.TokenIDs = []string{"1", "3"}
		}, types.ErrUnauthorized},
		{"token does not exist", func() { msg.TokenIDs = []string{"404"} }, types.ErrUnauthorized},
		{"send packet fails", func() { s.core.FailSends(channeltypes.ErrInvalidPacket) }, channeltypes.ErrInvalidPacket},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.openChannel("channel-0")
			s.Require().NoError(s.nft.Mint(s.ctx, contract, s.sender, "1", "2"))
			msg = s.transferMsg("channel-0", contract, "1", "2")
			tc.malleate()

			sequence, err := s.keeper.Transfer(s.ctx, msg)
			if tc.expErr != nil {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Empty(s.dispatcher.Transfers())
				_, err := s.keeper.GetOutboundTransfer(s.ctx, "channel-0", 1)
				s.Require().ErrorIs(err, types.ErrOutboundNotFound)
				return
			}
			s.Require().NoError(err)
			s.Require().Equal(uint64(1), sequence)

			packet := s.pendingPacket("channel-0", sequence)
			data, err := types.DecodePacketData(packet.GetData())
			s.Require().NoError(err)
			s.Require().Equal("nft-transfer/channel-0/punks", data.ClassID)
			s.Require().Equal("ipfs://punks", data.ClassURI)
			s.Require().Equal([]string{"1", "2"}, data.TokenIDs)
			s.Require().Equal([]string{"ipfs://punks/1", "ipfs://punks/2"}, data.TokenURIs)
			s.Require().Equal(s.sender.String(), data.Sender)
			s.Require().Equal("mirror-receiver", data.Receiver)
			s.Require().Equal(counterpartyChan, packet.DestinationChannel)

			outbound, err := s.keeper.GetOutboundTransfer(s.ctx, "channel-0", sequence)
			s.Require().NoError(err)
			s.Require().Equal(types.LockPending, outbound.State)
			s.Require().Equal(contract, outbound.Contract)

			transfers := s.dispatcher.Transfers()
			s.Require().Len(transfers, 1)
			s.Require().Equal(types.OutboundLock{PortID: types.PortID, ChannelID: "channel-0", Sequence: sequence}, transfers[0].Reply)
			s.Require().Equal(contract, transfers[0].Contract)
			s.Require().Equal([]string{"1", "2"}, transfers[0].TokenIDs)
			s.Require().Equal(types.GetEscrowAddress(types.PortID, "channel-0"), transfers[0].Receiver)

			s.Require().Empty(s.escrowed("channel-0"), "escrow is only committed on acknowledgement")
		})
	}
}

func (s *KeeperTestSuite) TestTransferTimeouts() {
	s.Run("default relative timeout", func() {
		s.SetupTest()
		s.openChannel("channel-0")
		packet := s.send("channel-0", contract, "1")
		s.Require().Equal(uint64(blockTime.Add(types.DefaultRelativeTimeout).UnixNano()), packet.TimeoutTimestamp)
		s.Require().True(packet.TimeoutHeight.IsZero())
	})

	s.Run("explicit timeouts are kept", func() {
		s.SetupTest()
		s.openChannel("channel-0")
		s.Require().NoError(s.nft.Mint(s.ctx, contract, s.sender, "1"))

		msg := s.transferMsg("channel-0", contract, "1")
		msg.TimeoutHeight = clienttypes.NewHeight(0, 50)
		sequence, err := s.keeper.Transfer(s.ctx, msg)
		s.Require().NoError(err)

		packet := s.pendingPacket("channel-0", sequence)
		s.Require().Equal(clienttypes.NewHeight(0, 50), packet.TimeoutHeight)
		s.Require().Zero(packet.TimeoutTimestamp)
	})
}

func (s *KeeperTestSuite) TestOnRecvPacket() {
	var packet channeltypes.Packet

	returning := func(classID string, tokenIDs ...string) {
		packet = s.inboundPacket("channel-0", s.returnData(classID, tokenIDs...))
	}

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"malformed packet", func() { packet.Data = []byte("not json") }, types.ErrInvalidPacket},
		{"token lists differ", func() {
			data := s.returnData("nft-transfer/channel-0/punks", "1", "2")
			data.TokenURIs = data.TokenURIs[:1]
			packet = s.inboundPacket("channel-0", data)
		}, types.ErrTokenListMismatch},
		{"receive disabled", func() {
			params := types.DefaultParams()
			params.ReceiveEnabled = false
			s.Require().NoError(s.keeper.SetParams(s.ctx, params))
		}, types.ErrReceiveDisabled},
		{"too many tokens", func() {
			params := types.DefaultParams()
			params.MaxTokensPerPacket = 1
			s.Require().NoError(s.keeper.SetParams(s.ctx, params))
		}, types.ErrTooManyTokens},
		{"wrong port", func() { returning("transfer/channel-0/punks", "1", "2") }, types.ErrWrongPort},
		{"wrong channel", func() { returning("nft-transfer/channel-1/punks", "1", "2") }, types.ErrWrongChannel},
		{"bare contract", func() { returning("punks", "1", "2") }, types.ErrClassNotNative},
		{"foreign class", func() { returning("nft-transfer/channel-0/nft-transfer/channel-3/apes", "1") }, types.ErrClassNotNative},
		{"invalid receiver", func() {
			data := s.returnData("nft-transfer/channel-0/punks", "1", "2")
			data.Receiver = "bob"
			packet = s.inboundPacket("channel-0", data)
		}, types.ErrInvalidAddress},
		{"token never escrowed", func() { returning("nft-transfer/channel-0/punks", "1", "2", "3") }, types.ErrNotEscrowed},
		{"other contract", func() { returning("nft-transfer/channel-0/apes", "1", "2") }, types.ErrNotEscrowed},
		{"escrowed on another channel", func() {
			s.openChannel("channel-1")
			packet = s.inboundPacket("channel-1", s.returnData("nft-transfer/channel-1/punks", "1", "2"))
		}, types.ErrNotEscrowed},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.openChannel("channel-0")
			s.sendAndEscrow("channel-0", contract, "1", "2")
			s.dispatcher.Reset()
			returning("nft-transfer/channel-0/punks", "1", "2")
			tc.malleate()

			ack := s.keeper.OnRecvPacket(s.ctx, packet)
			if tc.expErr != nil {
				s.requireErrorAck(ack, tc.expErr)
				s.Require().Empty(s.dispatcher.Transfers())
				s.Require().Len(s.escrowed("channel-0"), 2, "a rejected packet leaves the ledger untouched")
				return
			}

			s.Require().True(ack.Success())
			s.Require().Equal(types.NewResultAcknowledgement(), ack)
			s.Require().Empty(s.escrowed("channel-0"))

			transfers := s.dispatcher.Transfers()
			s.Require().Len(transfers, 1)
			s.Require().Equal(types.InboundDelivery{Packet: packet}, transfers[0].Reply)
			s.Require().Equal(contract, transfers[0].Contract)
			s.Require().Equal([]string{"1", "2"}, transfers[0].TokenIDs)
			s.Require().Equal(s.receiver, transfers[0].Receiver)
		})
	}
}

func (s *KeeperTestSuite) TestOnAcknowledgementPacket() {
	var (
		packet channeltypes.Packet
		ack    []byte
	)

	success := types.NewResultAcknowledgement().Acknowledgement()
	failure := types.NewErrorAcknowledgement(errors.New("receiver rejected")).Acknowledgement()

	testCases := []struct {
		name      string
		malleate  func()
		expErr    error
		expEscrow int
		expRefund bool
	}{
		{"success commits escrow", func() { ack = success }, nil, 2, false},
		{"error refunds", func() { ack = failure }, nil, 0, true},
		{"error refunds an unconfirmed send", func() {
			s.SetupTest()
			s.openChannel("channel-0")
			packet = s.send("channel-0", contract, "1", "2")
			s.dispatcher.Reset()
			ack = failure
		}, nil, 0, true},
		{"success on unconfirmed lock", func() {
			s.SetupTest()
			s.openChannel("channel-0")
			packet = s.send("channel-0", contract, "1", "2")
			s.dispatcher.Reset()
			ack = success
		}, types.ErrLockNotConfirmed, 0, false},
		{"success for an unknown send", func() {
			ack = success
			packet.Sequence = 42
		}, types.ErrOutboundNotFound, 0, false},
		{"success with a different contract", func() {
			ack = success
			data := s.returnData("nft-transfer/channel-0/apes", "1", "2")
			data.Sender = s.sender.String()
			packet.Data = data.GetBytes()
		}, types.ErrInvalidPacket, 0, false},
		{"malformed acknowledgement", func() { ack = []byte("ok") }, types.ErrInvalidAcknowledgement, 0, false},
		{"malformed packet", func() {
			ack = success
			packet.Data = []byte("{")
		}, types.ErrInvalidPacket, 0, false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.openChannel("channel-0")
			packet = s.send("channel-0", contract, "1", "2")
			s.confirmLock(packet)
			s.dispatcher.Reset()
			tc.malleate()

			err := s.keeper.OnAcknowledgementPacket(s.ctx, packet, ack)
			if tc.expErr != nil {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Empty(s.escrowed("channel-0"))
				return
			}
			s.Require().NoError(err)
			s.Require().Len(s.escrowed("channel-0"), tc.expEscrow)

			_, err = s.keeper.GetOutboundTransfer(s.ctx, "channel-0", packet.Sequence)
			s.Require().ErrorIs(err, types.ErrOutboundNotFound)

			if !tc.expRefund {
				s.Require().Empty(s.dispatcher.Transfers())
				return
			}
			s.requireRefund(packet, false, "1", "2")
		})
	}
}

func (s *KeeperTestSuite) TestOnTimeoutPacket() {
	s.SetupTest()
	s.openChannel("channel-0")
	packet := s.send("channel-0", contract, "1", "2", "3")
	s.confirmLock(packet)
	s.dispatcher.Reset()

	s.Require().NoError(s.keeper.OnTimeoutPacket(s.ctx, packet))
	s.Require().Empty(s.escrowed("channel-0"))
	s.requireRefund(packet, true, "1", "2", "3")

	_, err := s.keeper.GetOutboundTransfer(s.ctx, "channel-0", packet.Sequence)
	s.Require().ErrorIs(err, types.ErrOutboundNotFound)
}

func (s *KeeperTestSuite) requireRefund(packet channeltypes.Packet, timedOut bool, tokenIDs ...string) {
	transfers := s.dispatcher.Transfers()
	s.Require().Len(transfers, 1)
	s.Require().Equal(types.OutboundRefund{Packet: packet, TimedOut: timedOut}, transfers[0].Reply)
	s.Require().Equal(contract, transfers[0].Contract)
	s.Require().Equal(tokenIDs, transfers[0].TokenIDs)
	s.Require().Equal(s.sender, transfers[0].Receiver)
}

func (s *KeeperTestSuite) TestRoundTripConservation() {
	s.SetupTest()
	s.openChannel("channel-0")
	tokens := []string{"1", "2", "3"}

	s.sendAndEscrow("channel-0", contract, tokens...)
	s.Require().Len(s.escrowed("channel-0"), len(tokens))

	ack := s.keeper.OnRecvPacket(s.ctx, s.inboundPacket("channel-0", s.returnData("nft-transfer/channel-0/punks", tokens...)))
	s.Require().True(ack.Success())
	s.Require().Empty(s.escrowed("channel-0"))

	ack = s.keeper.OnRecvPacket(s.ctx, s.inboundPacket("channel-0", s.returnData("nft-transfer/channel-0/punks", tokens...)))
	s.requireErrorAck(ack, types.ErrNotEscrowed)
}

func (s *KeeperTestSuite) TestScenarioReceiveWithoutEscrow() {
	s.SetupTest()
	s.openChannel("channel-b")

	data := types.NewNonFungibleTokenPacketData("nft-transfer/channel-b/contractX", "", []string{"1"}, []string{""}, "alice", s.receiver.String())
	ack := s.keeper.OnRecvPacket(s.ctx, s.inboundPacket("channel-b", data))

	s.requireErrorAck(ack, types.ErrNotEscrowed)
	s.Require().Empty(s.escrowed("channel-b"))
	s.Require().Empty(s.dispatcher.Transfers())
}

func (s *KeeperTestSuite) TestScenarioReceiveForeignChannelClass() {
	s.SetupTest()
	s.openChannel("channel-a")
	s.openChannel("channel-b")
	s.sendAndEscrow("channel-a", "contractX", "1")
	before := s.escrowed("channel-a")
	s.dispatcher.Reset()

	// class id names channel-a, the packet arrives on channel-b
	data := types.NewNonFungibleTokenPacketData("nft-transfer/channel-a/contractX", "", []string{"1"}, []string{""}, "alice", s.receiver.String())
	ack := s.keeper.OnRecvPacket(s.ctx, s.inboundPacket("channel-b", data))

	s.requireErrorAck(ack, types.ErrWrongChannel)
	s.Require().Equal(before, s.escrowed("channel-a"))
	s.Require().Empty(s.escrowed("channel-b"))
	s.Require().Empty(s.dispatcher.Transfers())
}

func (s *KeeperTestSuite) TestScenarioSendThenReturn() {
	s.SetupTest()
	s.openChannel("channel-c")

	packet := s.send("channel-c", "contractY", "7")
	s.confirmLock(packet)
	s.Require().NoError(s.keeper.OnAcknowledgementPacket(s.ctx, packet, types.NewResultAcknowledgement().Acknowledgement()))

	entry := types.EscrowEntry{ChannelID: "channel-c", Contract: "contractY", TokenID: "7"}
	s.Require().Equal([]types.EscrowEntry{entry}, s.escrowed("channel-c"))

	s.dispatcher.Reset()
	inbound := s.inboundPacket("channel-c", s.returnData("nft-transfer/channel-c/contractY", "7"))
	ack := s.keeper.OnRecvPacket(s.ctx, inbound)
	s.Require().True(ack.Success())

	escrowed, err := s.keeper.IsEscrowed(s.ctx, entry)
	s.Require().NoError(err)
	s.Require().False(escrowed)

	transfers := s.dispatcher.Transfers()
	s.Require().Len(transfers, 1)
	s.Require().Equal(s.receiver, transfers[0].Receiver)
	s.Require().Equal([]string{"7"}, transfers[0].TokenIDs)
}

func (s *KeeperTestSuite) TestEvents() {
	s.SetupTest()
	s.openChannel("channel-0")
	s.ctx = s.ctx.WithEventManager(sdk.NewEventManager())

	packet := s.send("channel-0", contract, "1")
	s.requireEvent(types.EventTypeTransfer)

	s.confirmLock(packet)
	s.Require().NoError(s.keeper.OnTimeoutPacket(s.ctx, packet))
	s.requireEvent(types.EventTypeTimeout)
	s.requireEvent(types.EventTypeRefund)
	s.Require().Equal("nft-transfer/channel-0/"+contract, s.eventAttribute(types.EventTypeRefund, types.AttributeKeyClassID))
}

func (s *KeeperTestSuite) eventAttribute(eventType, key string) string {
	for _, event := range s.ctx.EventManager().Events() {
		if event.Type != eventType {
			continue
		}
		for _, attr := range event.Attributes {
			if attr.Key == key {
				return attr.Value
			}
		}
	}
	s.Require().Failf("missing attribute", "no %s attribute on %s events", key, eventType)
	return ""
}

func (s *KeeperTestSuite) requireEvent(eventType string) {
	for _, event := range s.ctx.EventManager().Events() {
		if event.Type == eventType {
			return
		}
	}
	s.Require().Failf("missing event", "no %s event emitted", eventType)
}
