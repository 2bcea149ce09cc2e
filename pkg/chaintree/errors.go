package chaintree

import "github.com/pkg/errors"

var (
	// ErrStaleTransaction is returned when a transaction pinned to a parent tip
	// is built against a different tip
	ErrStaleTransaction = errors.New("transaction expects a different parent tip")

	ErrChainMismatch = errors.New("block belongs to a different chain")
	ErrInvalidBlock  = errors.New("invalid block")
	ErrHeight        = errors.New("height must increase by exactly one")

	// ErrStopWalk ends a history walk early without error
	ErrStopWalk = errors.New("stop walk")
)
