package storage

import (
	"context"
	"sync/atomic"

	"github.com/ipfs/go-cid"
)

const (
	tableSep byte = ':'
)

type keyType byte

const (
	objectTPrefix keyType = iota + 1
	tipTPrefix
)

func typedKey(kType keyType, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p) + 1 //add sep as well
	}

	k := make([]byte, 0, n)
	k = append(k, byte(kType))
	for _, p := range parts {
		k = append(k, p...)
		k = append(k, tableSep)
	}

	return k[:len(k)-1]
}

func objectKey(id cid.Cid) []byte {
	return typedKey(objectTPrefix, id.Bytes())
}

func tipKey(chainID string) []byte {
	return typedKey(tipTPrefix, []byte(chainID))
}

// kv is the minimal surface the persistent backends share so the content
// addressing rules live in one place
type kv interface {
	get(key []byte) ([]byte, error)
	has(key []byte) (bool, error)
	set(key, value []byte, sync bool) error
}

type kvStore struct {
	db kv

	closed int32
}

// markClosed flips the store to closed, false if it already was
func (s *kvStore) markClosed() bool {
	return atomic.CompareAndSwapInt32(&s.closed, 0, 1)
}

func (s *kvStore) isClosed() bool {
	return atomic.LoadInt32(&s.closed) == 1
}

func (s *kvStore) Put(_ context.Context, d []byte) (cid.Cid, error) {
	if s.isClosed() {
		return cid.Undef, ErrClosed
	}

	id, err := Sum(d)
	if err != nil {
		return cid.Undef, err
	}

	k := objectKey(id)

	ok, err := s.db.has(k)
	if err != nil {
		return cid.Undef, err
	}
	if ok {
		return id, nil
	}

	if err := s.db.set(k, d, false); err != nil {
		return cid.Undef, err
	}

	return id, nil
}

func (s *kvStore) Get(_ context.Context, id cid.Cid) ([]byte, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if !id.Defined() {
		return nil, ErrInvalidCID
	}

	d, err := s.db.get(objectKey(id))
	if err != nil {
		return nil, err
	}

	if err := Verify(id, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *kvStore) Has(_ context.Context, id cid.Cid) (bool, error) {
	if s.isClosed() {
		return false, ErrClosed
	}
	if !id.Defined() {
		return false, nil
	}

	return s.db.has(objectKey(id))
}

func (s *kvStore) GetTip(_ context.Context, chainID string) (cid.Cid, error) {
	if s.isClosed() {
		return cid.Undef, ErrClosed
	}

	d, err := s.db.get(tipKey(chainID))
	if err != nil {
		return cid.Undef, err
	}

	return cid.Cast(d)
}

func (s *kvStore) SetTip(_ context.Context, chainID string, tip cid.Cid) error {
	if s.isClosed() {
		return ErrClosed
	}
	if !tip.Defined() {
		return ErrInvalidCID
	}

	return s.db.set(tipKey(chainID), tip.Bytes(), true)
}
