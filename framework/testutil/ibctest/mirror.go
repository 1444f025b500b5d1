package ibctest

import (
	"errors"
	"fmt"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
	capabilitytypes "github.com/cosmos/ibc-go/modules/capability/types"
	clienttypes "github.com/cosmos/ibc-go/v8/modules/core/02-client/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	porttypes "github.com/cosmos/ibc-go/v8/modules/core/05-port/types"
	host "github.com/cosmos/ibc-go/v8/modules/core/24-host"
	ibcexported "github.com/cosmos/ibc-go/v8/modules/core/exported"

	"github.com/celestiaorg/ics721/framework/ibc"
	"github.com/celestiaorg/ics721/framework/nfttransfer/types"
)

var _ porttypes.IBCModule = &Mirror{}

// ErrNotOwner is returned when sending back a voucher the sender does not hold.
var ErrNotOwner = errors.New("voucher not owned by sender")

// Voucher is the counterparty's representation of one received token.
type Voucher struct {
	ClassID  string
	TokenID  string
	TokenURI string
	Owner    string
}

// Mirror is a counterparty ICS-721 application. It mints a voucher for every
// received token and burns vouchers it sends back, restoring them if the send fails.
type Mirror struct {
	chain *Chain

	mu       sync.Mutex
	vouchers map[string]Voucher
	inflight map[uint64][]Voucher
	reject   error
	version  string
}

// NewMirror creates a Mirror speaking types.Version.
func NewMirror(chain *Chain) *Mirror {
	return &Mirror{
		chain:    chain,
		vouchers: make(map[string]Voucher),
		inflight: make(map[uint64][]Voucher),
		version:  types.Version,
	}
}

// SetVersion changes the version the mirror proposes and accepts.
func (m *Mirror) SetVersion(version string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = version
}

// RejectWith makes every received packet fail with err. A nil err clears it.
func (m *Mirror) RejectWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reject = err
}

// Voucher returns the voucher of classID/tokenID.
func (m *Mirror) Voucher(classID, tokenID string) (Voucher, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vouchers[voucherKey(classID, tokenID)]
	return v, ok
}

// Vouchers returns how many vouchers exist.
func (m *Mirror) Vouchers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vouchers)
}

// SendBack burns the vouchers of tokenIDs held by owner and sends them to receiver
// over channel, which is seen from the mirror's chain.
func (m *Mirror) SendBack(channel ibc.Channel, classID string, tokenIDs []string, owner, receiver string, timeoutTimestamp uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	burned := make([]Voucher, 0, len(tokenIDs))
	uris := make([]string, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		v, ok := m.vouchers[voucherKey(classID, tokenID)]
		if !ok || v.Owner != owner {
			return 0, fmt.Errorf("%w: %s/%s", ErrNotOwner, classID, tokenID)
		}
		burned = append(burned, v)
		uris = append(uris, v.TokenURI)
	}

	data := types.NewNonFungibleTokenPacketData(classID, "", tokenIDs, uris, owner, receiver)
	sequence, err := m.send(channel, data.GetBytes(), timeoutTimestamp)
	if err != nil {
		return 0, err
	}
	for _, v := range burned {
		delete(m.vouchers, voucherKey(v.ClassID, v.TokenID))
	}
	m.inflight[sequence] = burned
	return sequence, nil
}

// Forge sends data as is, without holding any voucher.
func (m *Mirror) Forge(channel ibc.Channel, data types.NonFungibleTokenPacketData, timeoutTimestamp uint64) (uint64, error) {
	return m.send(channel, data.GetBytes(), timeoutTimestamp)
}

func (m *Mirror) send(channel ibc.Channel, data []byte, timeoutTimestamp uint64) (uint64, error) {
	ctx := m.chain.Context()
	chanCap, ok := m.chain.Core.GetCapability(ctx, host.ChannelCapabilityPath(channel.PortID, channel.ChannelID))
	if !ok {
		return 0, channeltypes.ErrChannelCapabilityNotFound
	}
	if timeoutTimestamp == 0 {
		timeoutTimestamp = uint64(ctx.BlockTime().Add(types.DefaultRelativeTimeout).UnixNano())
	}
	return m.chain.Core.SendPacket(ctx, chanCap, channel.PortID, channel.ChannelID, clienttypes.ZeroHeight(), timeoutTimestamp, data)
}

func (m *Mirror) OnChanOpenInit(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID string,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	version string,
) (string, error) {
	if err := m.chain.Core.ClaimCapability(ctx, chanCap, host.ChannelCapabilityPath(portID, channelID)); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if version == "" {
		version = m.version
	}
	return version, nil
}

func (m *Mirror) OnChanOpenTry(
	ctx sdk.Context,
	order channeltypes.Order,
	connectionHops []string,
	portID,
	channelID string,
	chanCap *capabilitytypes.Capability,
	counterparty channeltypes.Counterparty,
	counterpartyVersion string,
) (string, error) {
	if err := m.chain.Core.ClaimCapability(ctx, chanCap, host.ChannelCapabilityPath(portID, channelID)); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

func (m *Mirror) OnChanOpenAck(ctx sdk.Context, portID, channelID, counterpartyChannelID, counterpartyVersion string) error {
	return nil
}

func (m *Mirror) OnChanOpenConfirm(ctx sdk.Context, portID, channelID string) error {
	return nil
}

func (m *Mirror) OnChanCloseInit(ctx sdk.Context, portID, channelID string) error {
	return nil
}

func (m *Mirror) OnChanCloseConfirm(ctx sdk.Context, portID, channelID string) error {
	return nil
}

func (m *Mirror) OnRecvPacket(ctx sdk.Context, packet channeltypes.Packet, relayer sdk.AccAddress) ibcexported.Acknowledgement {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reject != nil {
		return types.NewErrorAcknowledgement(m.reject)
	}
	data, err := types.DecodePacketData(packet.GetData())
	if err != nil {
		return types.NewErrorAcknowledgement(err)
	}
	for i, tokenID := range data.TokenIDs {
		m.vouchers[voucherKey(data.ClassID, tokenID)] = Voucher{
			ClassID:  data.ClassID,
			TokenID:  tokenID,
			TokenURI: data.TokenURIs[i],
			Owner:    data.Receiver,
		}
	}
	return types.NewResultAcknowledgement()
}

func (m *Mirror) OnAcknowledgementPacket(ctx sdk.Context, packet channeltypes.Packet, acknowledgement []byte, relayer sdk.AccAddress) error {
	ack, err := types.DecodeAcknowledgement(acknowledgement)
	if err != nil {
		return err
	}
	m.settle(packet.Sequence, ack.Success())
	return nil
}

func (m *Mirror) OnTimeoutPacket(ctx sdk.Context, packet channeltypes.Packet, relayer sdk.AccAddress) error {
	m.settle(packet.Sequence, false)
	return nil
}

// settle restores the vouchers of a failed send back to their owner.
func (m *Mirror) settle(sequence uint64, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	burned := m.inflight[sequence]
	delete(m.inflight, sequence)
	if success {
		return
	}
	for _, v := range burned {
		m.vouchers[voucherKey(v.ClassID, v.TokenID)] = v
	}
}

func voucherKey(classID, tokenID string) string {
	return classID + "#" + tokenID
}
