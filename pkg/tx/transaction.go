package tx

import (
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/dag"
	"github.com/tcfw/chaintree/pkg/storage"
)

const (
	Version1 uint8 = 1

	// ReservedSegment prefixes tree state that is maintained by the chain
	// tree itself and cannot be written with SetData
	ReservedSegment = "_chaintree"
)

var (
	// OwnersPath is where the current owner addresses live in the tree state
	OwnersPath = []string{ReservedSegment, "owners"}

	ErrInvalidTransaction = errors.New("invalid transaction")
)

type Kind uint8

const (
	KindSetData Kind = iota + 1
	KindSetOwnership
)

func (k Kind) String() string {
	switch k {
	case KindSetData:
		return "SET_DATA"
	case KindSetOwnership:
		return "SET_OWNERSHIP"
	default:
		return "UNKNOWN"
	}
}

// Transaction is a pure description of one state change. It carries no
// network state; ExpectedParentTip optionally pins the tip it was built for.
type Transaction struct {
	Version           uint8       `msgpack:"v"`
	Kind              Kind        `msgpack:"k"`
	Path              []string    `msgpack:"p"`
	Value             interface{} `msgpack:"d"`
	ExpectedParentTip []byte      `msgpack:"e,omitempty"`
}

func (t *Transaction) Marshal() ([]byte, error) {
	n, err := t.Normalized()
	if err != nil {
		return nil, err
	}

	b, err := dag.Encode(n)
	if err != nil {
		return nil, errors.Wrap(err, "mashaling tx")
	}

	return b, nil
}

func (t *Transaction) Unmarshal(b []byte) error {
	if err := dag.Decode(b, t); err != nil {
		return err
	}

	return t.Validate()
}

// Normalized returns a copy whose Value is in the form it reads back from the
// store. Typed maps encode in random key order, their normalized form does not.
func (t *Transaction) Normalized() (*Transaction, error) {
	v, err := dag.Normalize(t.Value)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidTransaction, "value not encodable: %s", err)
	}

	n := *t
	n.Value = v
	return &n, nil
}

// ID is the content hash of the encoded transaction
func (t *Transaction) ID() (cid.Cid, error) {
	b, err := t.Marshal()
	if err != nil {
		return cid.Undef, err
	}

	return storage.Sum(b)
}

// ExpectedTip returns the pinned parent tip, cid.Undef when unpinned
func (t *Transaction) ExpectedTip() cid.Cid {
	if len(t.ExpectedParentTip) == 0 {
		return cid.Undef
	}

	c, err := cid.Cast(t.ExpectedParentTip)
	if err != nil {
		return cid.Undef
	}

	return c
}

// Owners returns the owner addresses of a SetOwnership transaction
func (t *Transaction) Owners() ([]string, error) {
	if t.Kind != KindSetOwnership {
		return nil, errors.Wrapf(ErrInvalidTransaction, "%s has no owners", t.Kind)
	}

	return ownerList(t.Value)
}

func ownerList(v interface{}) ([]string, error) {
	var raw []interface{}

	switch t := v.(type) {
	case []interface{}:
		raw = t
	case []string:
		raw = make([]interface{}, len(t))
		for i, s := range t {
			raw[i] = s
		}
	default:
		return nil, errors.Wrapf(ErrInvalidTransaction, "owners must be a list, got %T", v)
	}

	if len(raw) == 0 {
		return nil, errors.Wrap(ErrInvalidTransaction, "at least one owner is required")
	}

	owners := make([]string, 0, len(raw))
	for _, o := range raw {
		s, ok := o.(string)
		if !ok || s == "" {
			return nil, errors.Wrap(ErrInvalidTransaction, "owners must be non empty strings")
		}
		owners = append(owners, s)
	}

	return owners, nil
}

// Validate checks the transaction against its kind's contract
func (t *Transaction) Validate() error {
	if t.Version != Version1 {
		return errors.Wrapf(ErrInvalidTransaction, "unsupported version %d", t.Version)
	}

	if err := dag.ValidatePath(t.Path); err != nil {
		return errors.Wrap(ErrInvalidTransaction, err.Error())
	}

	if len(t.ExpectedParentTip) != 0 && !t.ExpectedTip().Defined() {
		return errors.Wrap(ErrInvalidTransaction, "malformed expected parent tip")
	}

	if t.Value == nil {
		return errors.Wrap(ErrInvalidTransaction, "value is required")
	}

	switch t.Kind {
	case KindSetData:
		if t.Path[0] == ReservedSegment {
			return errors.Wrapf(ErrInvalidTransaction, "path %s is reserved", ReservedSegment)
		}
	case KindSetOwnership:
		if dag.JoinPath(t.Path) != dag.JoinPath(OwnersPath) {
			return errors.Wrap(ErrInvalidTransaction, "ownership must be written to the owners path")
		}
		if _, err := ownerList(t.Value); err != nil {
			return err
		}
	default:
		return errors.Wrapf(ErrInvalidTransaction, "unknown kind %d", t.Kind)
	}

	return nil
}
