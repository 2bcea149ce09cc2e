package tx

import (
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/dag"
)

type Option func(*Transaction) error

// WithExpectedParentTip pins the transaction to a parent tip. Playing it
// against any other tip ends in a conflict without a network round trip.
func WithExpectedParentTip(tip cid.Cid) Option {
	return func(t *Transaction) error {
		if !tip.Defined() {
			return errors.Wrap(ErrInvalidTransaction, "expected parent tip is undefined")
		}

		t.ExpectedParentTip = tip.Bytes()
		return nil
	}
}

// NewSetData builds a transaction writing value at a slash separated path
func NewSetData(path string, value interface{}, opts ...Option) (*Transaction, error) {
	segs, err := dag.ParsePath(path)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTransaction, err.Error())
	}

	return NewSetDataPath(segs, value, opts...)
}

// NewSetDataPath builds a transaction writing value at the given segments
func NewSetDataPath(path []string, value interface{}, opts ...Option) (*Transaction, error) {
	return build(KindSetData, path, value, opts...)
}

// NewSetOwnership builds a transaction replacing the owners of a tree
func NewSetOwnership(owners []string, opts ...Option) (*Transaction, error) {
	return build(KindSetOwnership, OwnersPath, owners, opts...)
}

func build(kind Kind, path []string, value interface{}, opts ...Option) (*Transaction, error) {
	if err := dag.ValidatePath(path); err != nil {
		return nil, errors.Wrap(ErrInvalidTransaction, err.Error())
	}

	if value == nil {
		return nil, errors.Wrap(ErrInvalidTransaction, "value is required")
	}

	v, err := dag.Normalize(value)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidTransaction, "value not encodable: %s", err)
	}

	t := &Transaction{
		Version: Version1,
		Kind:    kind,
		Path:    append([]string(nil), path...),
		Value:   v,
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}
