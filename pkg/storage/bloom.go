package storage

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/ipfs/go-cid"
)

const (
	// MaxBlockTxCount bounds the number of transactions carried by one block
	MaxBlockTxCount = 256

	falsePositive = 0.01
)

// MakeBloom builds a serialised bloom filter over the given transaction ids.
// The encoding is deterministic for a given set of ids.
func MakeBloom(tx []cid.Cid) ([]byte, error) {
	b := bloom.NewWithEstimates(MaxBlockTxCount, falsePositive)

	for _, t := range tx {
		b.Add(t.Bytes())
	}

	return b.GobEncode()
}

// BloomContains reports whether tx may be in the filter. False positives are
// possible, false negatives are not.
func BloomContains(b []byte, tx cid.Cid) (bool, error) {
	bloom := bloom.NewWithEstimates(MaxBlockTxCount, falsePositive)

	if err := bloom.GobDecode(b); err != nil {
		return false, err
	}

	return bloom.Test(tx.Bytes()), nil
}
