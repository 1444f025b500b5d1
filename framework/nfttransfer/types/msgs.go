package types

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
)

// MsgTransfer asks the module to send tokens of one local class to a receiver on the
// counterparty of SourceChannel.
type MsgTransfer struct {
	SourcePort       string
	SourceChannel    string
	ClassID          string
	TokenIDs         []string
	Sender           string
	Receiver         string
	TimeoutHeight    clienttypes.Height
	TimeoutTimestamp uint64
}

// MsgTransferResponse carries the sequence of the emitted packet.
type MsgTransferResponse struct {
	Sequence uint64
}

// NewMsgTransfer creates a new MsgTransfer instance
func NewMsgTransfer(
	sourcePort, sourceChannel, classID string, tokenIDs []string,
	sender, receiver string,
	timeoutHeight clienttypes.Height, timeoutTimestamp uint64,
) *MsgTransfer {
	return &MsgTransfer{
		SourcePort:       sourcePort,
		SourceChannel:    sourceChannel,
		ClassID:          classID,
		TokenIDs:         tokenIDs,
		Sender:           sender,
		Receiver:         receiver,
		TimeoutHeight:    timeoutHeight,
		TimeoutTimestamp: timeoutTimestamp,
	}
}

// ValidateBasic performs a basic check of the MsgTransfer fields.
func (msg MsgTransfer) ValidateBasic() error {
	if err := host.PortIdentifierValidator(msg.SourcePort); err != nil {
		return errorsmod.Wrap(err, "invalid source port ID")
	}
	if err := host.ChannelIdentifierValidator(msg.SourceChannel); err != nil {
		return errorsmod.Wrap(err, "invalid source channel ID")
	}
	if err := ValidateLocalClassID(msg.ClassID); err != nil {
		return err
	}
	if err := ValidateTokenIDs(msg.TokenIDs); err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(msg.Sender); err != nil {
		return errorsmod.Wrapf(ErrInvalidAddress, "string could not be parsed as address: %v", err)
	}
	if strings.TrimSpace(msg.Receiver) == "" {
		return errorsmod.Wrap(ErrInvalidAddress, "missing recipient address")
	}
	return nil
}
