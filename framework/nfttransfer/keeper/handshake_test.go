package keeper_test

import (
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"

	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

func (s *KeeperTestSuite) TestValidateChannelOpen() {
	var (
		order   channeltypes.Order
		portID  string
		version string
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"success", func() {}, nil},
		{"wrong port", func() { portID = "transfer" }, types.ErrInvalidPort},
		{"ordered channel", func() { order = channeltypes.ORDERED }, types.ErrInvalidChannelOrdering},
		{"wrong version", func() { version = "ics20-1" }, types.ErrInvalidVersion},
		{"empty version", func() { version = "" }, types.ErrInvalidVersion},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			order, portID, version = channeltypes.UNORDERED, types.PortID, types.Version
			tc.malleate()

			err := s.keeper.ValidateChannelOpen(s.ctx, order, portID, version)
			if tc.expErr == nil {
				s.Require().NoError(err)
				return
			}
			s.Require().ErrorIs(err, tc.expErr)
		})
	}
}

func (s *KeeperTestSuite) TestConnectChannel() {
	s.Run("persists channel info once", func() {
		s.SetupTest()
		s.openChannel("channel-0")

		info, err := s.keeper.GetChannelInfo(s.ctx, "channel-0")
		s.Require().NoError(err)
		s.Require().Equal(types.ChannelInfo{
			ChannelID:            "channel-0",
			CounterpartyEndpoint: types.Endpoint{PortID: types.PortID, ChannelID: counterpartyChan},
			ConnectionID:         "connection-0",
		}, info)

		_, err = s.keeper.ConnectChannel(s.ctx, types.PortID, "channel-0", "channel-99")
		s.Require().ErrorIs(err, types.ErrChannelExists)

		info, err = s.keeper.GetChannelInfo(s.ctx, "channel-0")
		s.Require().NoError(err)
		s.Require().Equal(counterpartyChan, info.CounterpartyEndpoint.ChannelID)
	})

	s.Run("counterparty read from the core channel", func() {
		s.SetupTest()
		s.core.SetChannel(types.PortID, "channel-1", channeltypes.NewChannel(
			channeltypes.OPEN, channeltypes.UNORDERED,
			channeltypes.NewCounterparty(types.PortID, "channel-4"),
			[]string{"connection-2"}, types.Version,
		))

		info, err := s.keeper.ConnectChannel(s.ctx, types.PortID, "channel-1", "")
		s.Require().NoError(err)
		s.Require().Equal("channel-4", info.CounterpartyEndpoint.ChannelID)
		s.Require().Equal("connection-2", info.ConnectionID)
	})

	s.Run("unknown channel", func() {
		s.SetupTest()
		_, err := s.keeper.ConnectChannel(s.ctx, types.PortID, "channel-5", counterpartyChan)
		s.Require().ErrorIs(err, types.ErrChannelNotFound)

		_, err = s.keeper.GetChannelInfo(s.ctx, "channel-5")
		s.Require().ErrorIs(err, types.ErrChannelNotFound)
	})

	s.Run("lists connected channels", func() {
		s.SetupTest()
		s.openChannel("channel-1")
		s.openChannel("channel-0")

		infos, err := s.keeper.GetChannelInfos(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(infos, 2)
		s.Require().Equal("channel-0", infos[0].ChannelID)
		s.Require().Equal("channel-1", infos[1].ChannelID)
	})
}

func (s *KeeperTestSuite) TestValidateChannelClose() {
	s.SetupTest()
	s.openChannel("channel-0")

	err := s.keeper.ValidateChannelClose(s.ctx, types.PortID, "channel-0")
	s.Require().ErrorIs(err, types.ErrChannelCloseUnsupported)
	s.Require().Contains(err.Error(), "0 escrowed tokens and 0 pending sends")

	s.sendAndEscrow("channel-0", contract, "1")
	s.send("channel-0", contract, "2")

	err = s.keeper.ValidateChannelClose(s.ctx, types.PortID, "channel-0")
	s.Require().ErrorIs(err, types.ErrChannelCloseUnsupported)
	s.Require().Contains(err.Error(), "1 escrowed tokens and 1 pending sends")
}
