package types

import (
	"encoding/json"
	"strings"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// NonFungibleTokenPacketData is the ICS-721 wire payload. It is a value type that
// lives only for the duration of one packet's processing.
type NonFungibleTokenPacketData struct {
	ClassID   string   `json:"class_id"`
	ClassURI  string   `json:"class_uri,omitempty"`
	TokenIDs  []string `json:"token_ids"`
	TokenURIs []string `json:"token_uris"`
	Sender    string   `json:"sender"`
	Receiver  string   `json:"receiver"`
}

// NewNonFungibleTokenPacketData constructs a new NonFungibleTokenPacketData instance
func NewNonFungibleTokenPacketData(
	classID, classURI string,
	tokenIDs, tokenURIs []string,
	sender, receiver string,
) NonFungibleTokenPacketData {
	return NonFungibleTokenPacketData{
		ClassID:   classID,
		ClassURI:  classURI,
		TokenIDs:  tokenIDs,
		TokenURIs: tokenURIs,
		Sender:    sender,
		Receiver:  receiver,
	}
}

// ValidateBasic checks the structure of the packet. It never looks at
// state, so it is safe to run before any escrow lookup.
func (nftpd NonFungibleTokenPacketData) ValidateBasic() error {
	if strings.TrimSpace(nftpd.ClassID) == "" {
		return errorsmod.Wrap(ErrInvalidPacket, "class id cannot be blank")
	}
	if len(nftpd.TokenIDs) == 0 {
		return errorsmod.Wrap(ErrInvalidPacket, "token ids cannot be empty")
	}
	if len(nftpd.TokenIDs) != len(nftpd.TokenURIs) {
		return errorsmod.Wrapf(ErrTokenListMismatch, "%d token ids, %d token uris", len(nftpd.TokenIDs), len(nftpd.TokenURIs))
	}
	if err := ValidateTokenIDs(nftpd.TokenIDs); err != nil {
		return err
	}
	if strings.TrimSpace(nftpd.Sender) == "" {
		return errorsmod.Wrap(ErrInvalidAddress, "sender address cannot be blank")
	}
	if strings.TrimSpace(nftpd.Receiver) == "" {
		return errorsmod.Wrap(ErrInvalidAddress, "receiver address cannot be blank")
	}
	return nil
}

// GetBytes returns the sorted JSON encoding of the packet data.
func (nftpd NonFungibleTokenPacketData) GetBytes() []byte {
	bz, err := json.Marshal(nftpd)
	if err != nil {
		panic(err)
	}
	return sdk.MustSortJSON(bz)
}

// DecodePacketData unmarshals and validates raw packet bytes.
func DecodePacketData(bz []byte) (NonFungibleTokenPacketData, error) {
	var data NonFungibleTokenPacketData
	if err := json.Unmarshal(bz, &data); err != nil {
		return NonFungibleTokenPacketData{}, errorsmod.Wrapf(ErrInvalidPacket, "cannot unmarshal packet data: %s", err)
	}
	if err := data.ValidateBasic(); err != nil {
		return NonFungibleTokenPacketData{}, err
	}
	return data, nil
}

// ValidateTokenIDs rejects an empty list, blank ids and duplicate ids.
func ValidateTokenIDs(tokenIDs []string) error {
	if len(tokenIDs) == 0 {
		return errorsmod.Wrap(ErrInvalidPacket, "token ids cannot be empty")
	}
	seen := make(map[string]struct{}, len(tokenIDs))
	for i, id := range tokenIDs {
		if strings.TrimSpace(id) == "" {
			return errorsmod.Wrapf(ErrInvalidPacket, "token id at index %d is blank", i)
		}
		if _, ok := seen[id]; ok {
			return errorsmod.Wrapf(ErrInvalidPacket, "duplicate token id %s", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
