package keeper_test

import (
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

func (s *KeeperTestSuite) TestGenesis() {
	s.SetupTest()

	channels := []types.ChannelInfo{
		{
			ChannelID:            "channel-0",
			CounterpartyEndpoint: types.Endpoint{PortID: types.PortID, ChannelID: "channel-3"},
			ConnectionID:         "connection-0",
		},
		{
			ChannelID:            "channel-1",
			CounterpartyEndpoint: types.Endpoint{PortID: types.PortID, ChannelID: "channel-8"},
			ConnectionID:         "connection-1",
		},
	}
	params := types.DefaultParams()
	params.MaxTokensPerPacket = 16

	gs := types.GenesisState{
		Params:   params,
		Channels: channels,
		Escrow: []types.EscrowEntry{
			{ChannelID: "channel-0", Contract: "apes", TokenID: "9"},
			{ChannelID: "channel-0", Contract: "punks", TokenID: "1"},
			{ChannelID: "channel-0", Contract: "punks", TokenID: "2"},
			{ChannelID: "channel-1", Contract: "punks", TokenID: "3"},
		},
		Outbound: []types.OutboundTransfer{
			{ChannelID: "channel-0", Sequence: 5, Contract: "punks", TokenIDs: []string{"4"}, Sender: s.sender.String(), State: types.LockConfirmed},
			{ChannelID: "channel-1", Sequence: 2, Contract: "apes", TokenIDs: []string{"5", "6"}, Sender: s.sender.String(), State: types.LockPending},
		},
	}

	k := s.newKeeper(secondaryStoreKey)
	s.Require().NoError(k.InitGenesis(s.ctx, gs))
	s.Require().True(k.IsBound(s.ctx, types.PortID))

	exported, err := k.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(gs, *exported)

	escrowed, err := k.IsEscrowed(s.ctx, types.EscrowEntry{ChannelID: "channel-1", Contract: "punks", TokenID: "3"})
	s.Require().NoError(err)
	s.Require().True(escrowed)

	entries, err := k.EscrowedTokens(s.ctx, "channel-0")
	s.Require().NoError(err)
	s.Require().Equal(gs.Escrow[:3], entries)

	err = k.ValidateChannelClose(s.ctx, types.PortID, "channel-1")
	s.Require().ErrorIs(err, types.ErrChannelCloseUnsupported)
	s.Require().Contains(err.Error(), "1 escrowed tokens and 1 pending sends")
}

func (s *KeeperTestSuite) TestInitGenesisInvalid() {
	s.SetupTest()

	gs := types.DefaultGenesisState()
	gs.Escrow = []types.EscrowEntry{{ChannelID: "channel-0", Contract: "punks", TokenID: "1"}}

	k := s.newKeeper(secondaryStoreKey)
	s.Require().ErrorIs(k.InitGenesis(s.ctx, *gs), types.ErrInvalidGenesis)
}

func (s *KeeperTestSuite) TestParams() {
	s.SetupTest()

	k := s.newKeeper(secondaryStoreKey)
	params, err := k.GetParams(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(types.DefaultParams(), params, "defaults apply before anything is stored")

	params.SendEnabled = false
	s.Require().NoError(k.SetParams(s.ctx, params))
	stored, err := k.GetParams(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(params, stored)

	params.PortID = ""
	s.Require().Error(k.SetParams(s.ctx, params))

	port, err := k.GetPort(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(types.PortID, port)
}
