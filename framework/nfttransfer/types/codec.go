package types

import (
	"encoding/json"
	"fmt"

	collcodec "cosmossdk.io/collections/codec"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/fxamacker/cbor/v2"
)

// ModuleCdc decodes acknowledgements, which arrive as proto JSON.
var ModuleCdc = codec.NewProtoCodec(codectypes.NewInterfaceRegistry())

var detEncMode cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("failed to build cbor encoder: %w", err))
	}
	detEncMode = em
}

// cborValue stores plain Go structs in collections using deterministic CBOR.
type cborValue[T any] struct{}

// CBORValue returns a collections value codec for T.
func CBORValue[T any]() collcodec.ValueCodec[T] {
	return cborValue[T]{}
}

func (cborValue[T]) Encode(value T) ([]byte, error) {
	return detEncMode.Marshal(value)
}

func (cborValue[T]) Decode(b []byte) (T, error) {
	var value T
	if err := cbor.Unmarshal(b, &value); err != nil {
		return value, fmt.Errorf("failed to decode %T: %w", value, err)
	}
	return value, nil
}

func (cborValue[T]) EncodeJSON(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (cborValue[T]) DecodeJSON(b []byte) (T, error) {
	var value T
	err := json.Unmarshal(b, &value)
	return value, err
}

func (cborValue[T]) Stringify(value T) string {
	return fmt.Sprintf("%+v", value)
}

func (cborValue[T]) ValueType() string {
	var value T
	return fmt.Sprintf("cbor/%T", value)
}
