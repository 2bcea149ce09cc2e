package cryptography

import (
	"github.com/multiformats/go-multibase"
)

// DecodeMultibase decodes key material from any multibase encoding
func DecodeMultibase(mb string) ([]byte, error) {
	_, d, err := multibase.Decode(mb)
	return d, err
}

// EncodeMultibase encodes raw key material as base58btc multibase
func EncodeMultibase(raw []byte) (string, error) {
	return multibase.Encode(multibase.Base58BTC, raw)
}
