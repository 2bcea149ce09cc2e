package chaintree

import (
	"strings"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

const IDPrefix = "did:chaintree:"

// DeriveID returns the tree ID for a creating owner address. The ID is fixed
// at creation and survives ownership changes.
func DeriveID(ownerAddress string) (string, error) {
	if ownerAddress == "" {
		return "", errors.New("owner address is required")
	}

	d := append(GenesisCID().Bytes(), []byte(ownerAddress)...)

	mh, err := multihash.Sum(d, multihash.SHA3_256, -1)
	if err != nil {
		return "", errors.Wrap(err, "hashing id")
	}

	return IDPrefix + mh.B58String(), nil
}

// ValidID checks the shape of a tree ID
func ValidID(id string) bool {
	if !strings.HasPrefix(id, IDPrefix) {
		return false
	}

	_, err := multihash.FromB58String(strings.TrimPrefix(id, IDPrefix))
	return err == nil
}
