package types

import (
	errorsmod "cosmossdk.io/errors"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
)

// ackResult is the opaque success marker carried by result acknowledgements.
var ackResult = []byte{byte(1)}

// NewResultAcknowledgement returns the success acknowledgement.
func NewResultAcknowledgement() channeltypes.Acknowledgement {
	return channeltypes.NewResultAcknowledgement(ackResult)
}

// NewErrorAcknowledgement returns an error acknowledgement carrying err's message
// verbatim, unlike channeltypes.NewErrorAcknowledgement which only keeps the code.
func NewErrorAcknowledgement(err error) channeltypes.Acknowledgement {
	return channeltypes.Acknowledgement{
		Response: &channeltypes.Acknowledgement_Error{
			Error: err.Error(),
		},
	}
}

// DecodeAcknowledgement unmarshals acknowledgement bytes written by the counterparty.
func DecodeAcknowledgement(bz []byte) (channeltypes.Acknowledgement, error) {
	var ack channeltypes.Acknowledgement
	if err := ModuleCdc.UnmarshalJSON(bz, &ack); err != nil {
		return channeltypes.Acknowledgement{}, errorsmod.Wrapf(ErrInvalidAcknowledgement, "cannot unmarshal acknowledgement: %s", err)
	}
	if err := ack.ValidateBasic(); err != nil {
		return channeltypes.Acknowledgement{}, errorsmod.Wrap(ErrInvalidAcknowledgement, err.Error())
	}
	return ack, nil
}
