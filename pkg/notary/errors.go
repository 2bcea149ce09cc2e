package notary

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
)

var (
	// ErrConflict is matched by *ConflictError
	ErrConflict = errors.New("parent tip is no longer current")

	// ErrRejected means the group refused the block, resubmitting it unchanged
	// will not help
	ErrRejected = errors.New("rejected by notary group")

	// ErrTimeout means no quorum was reached before the deadline. The block
	// may still be committed by a later identical submission.
	ErrTimeout = errors.New("notary quorum not reached in time")

	ErrInvalidConfirmation = errors.New("invalid confirmation")
	ErrUnknownSigner       = errors.New("unknown signer")
	ErrVoteRefused         = errors.New("signer refused to vote")
)

// ConflictError carries the tip that won over the submitted parent
type ConflictError struct {
	Tip cid.Cid
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: current tip is %s", ErrConflict, e.Tip)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
