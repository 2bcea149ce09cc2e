//go:generate go run github.com/vektra/mockery/v2 --name Group

package notary

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/tcfw/chaintree/pkg/cryptography"
)

// Group is a notary quorum that decides which block follows a tip. At most
// one block is ever confirmed for a given chain and parent.
type Group interface {
	// Submit asks the group to confirm a block. It returns a *ConflictError
	// when the parent is not the current tip, ErrRejected when the block is
	// invalid and ErrTimeout when the quorum was not reached in time.
	Submit(ctx context.Context, sub *Submission) (*Confirmation, error)

	// GetTip returns the authoritative tip of a chain, storage.ErrNotFound if
	// the chain has never been committed to
	GetTip(ctx context.Context, chainID string) (cid.Cid, error)

	Signers() SignerSet
	Threshold() int
}

// SignerSet maps signer IDs to their BLS public keys
type SignerSet map[string]*cryptography.Bls12381PublicKey

// DefaultThreshold is the quorum size tolerating f = (n-1)/3 faulty signers.
// For n = 3f+1 this is 2f+1.
func DefaultThreshold(n int) int {
	if n <= 0 {
		return 0
	}

	f := (n - 1) / 3
	return n - f
}
