package dag

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Encode marshals v to canonical msgpack: map keys are sorted and integers use
// their most compact form, so equal values always produce equal bytes and
// therefore equal CIDs.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)

	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encoding")
	}

	return buf.Bytes(), nil
}

// Decode unmarshals canonical msgpack into v. Untyped numbers decode as int64,
// uint64 or float64 regardless of their wire width.
func Decode(b []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)

	return errors.Wrap(dec.Decode(v), "decoding")
}

// Normalize round trips v through the codec, returning the value exactly as it
// will read back from the store
func Normalize(v interface{}) (interface{}, error) {
	b, err := Encode(v)
	if err != nil {
		return nil, err
	}

	var out interface{}
	if err := Decode(b, &out); err != nil {
		return nil, err
	}

	return out, nil
}
