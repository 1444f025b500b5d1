package types

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
)

const classIDSeparator = "/"

// ClassPath is a decomposed class id of an asset whose home is this chain.
type ClassPath struct {
	PortID    string
	ChannelID string
	Contract  string
}

// NewClassID returns the class id sent outward for a locally minted class.
func NewClassID(portID, channelID, contract string) string {
	return fmt.Sprintf("%s/%s/%s", portID, channelID, contract)
}

// ParseClassID splits a class id into port, channel and local contract. Anything that
// is not exactly three non-empty segments belongs to an asset whose home is not this
// chain, which the module does not support.
func ParseClassID(classID string) (ClassPath, error) {
	segments := strings.Split(classID, classIDSeparator)
	if len(segments) != 3 {
		return ClassPath{}, errorsmod.Wrapf(ErrClassNotNative, "class id %q has %d segments", classID, len(segments))
	}
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return ClassPath{}, errorsmod.Wrapf(ErrClassNotNative, "class id %q has an empty segment", classID)
		}
	}
	return ClassPath{
		PortID:    segments[0],
		ChannelID: segments[1],
		Contract:  segments[2],
	}, nil
}

// ValidateEndpoint checks that the class was sent out through the given port and channel.
func (p ClassPath) ValidateEndpoint(portID, channelID string) error {
	if p.PortID != portID {
		return errorsmod.Wrapf(ErrWrongPort, "expected %s, got %s", portID, p.PortID)
	}
	if p.ChannelID != channelID {
		return errorsmod.Wrapf(ErrWrongChannel, "expected %s, got %s", channelID, p.ChannelID)
	}
	return nil
}

// String reassembles the class id.
func (p ClassPath) String() string {
	return NewClassID(p.PortID, p.ChannelID, p.Contract)
}

// ValidateLocalClassID checks a class id names a local contract rather than a
// prefixed path.
func ValidateLocalClassID(classID string) error {
	if strings.TrimSpace(classID) == "" {
		return errorsmod.Wrap(ErrInvalidClassID, "class id cannot be blank")
	}
	if strings.Contains(classID, classIDSeparator) {
		return errorsmod.Wrapf(ErrInvalidClassID, "class id %q must not contain %q", classID, classIDSeparator)
	}
	return nil
}
