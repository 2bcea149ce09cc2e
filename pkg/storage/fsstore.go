package storage

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
)

var (
	_ Store = (*FSStore)(nil)
)

// FSStore keeps every object in its own read only file, sharded by the first
// characters of the CID string. Writes go through a temp file and rename so a
// crash never leaves a partial object behind.
type FSStore struct {
	root string
}

func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("fs store root directory is required")
	}

	for _, dir := range []string{objectsDir(root), tipsDir(root)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating store dir")
		}
	}

	return &FSStore{root: root}, nil
}

func objectsDir(root string) string { return filepath.Join(root, "objects") }
func tipsDir(root string) string    { return filepath.Join(root, "tips") }

func (s *FSStore) pathFor(id cid.Cid) string {
	str := id.String()
	if len(str) < 4 {
		return filepath.Join(objectsDir(s.root), str)
	}

	return filepath.Join(objectsDir(s.root), str[len(str)-3:len(str)-1], str)
}

func (s *FSStore) Put(ctx context.Context, d []byte) (cid.Cid, error) {
	id, err := Sum(d)
	if err != nil {
		return cid.Undef, err
	}

	ok, err := s.Has(ctx, id)
	if err != nil {
		return cid.Undef, err
	}
	if ok {
		return id, nil
	}

	p := s.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return cid.Undef, errors.Wrap(err, "creating shard dir")
	}

	if err := renameio.WriteFile(p, d, 0o444); err != nil {
		return cid.Undef, errors.Wrap(err, "writing object")
	}

	return id, nil
}

func (s *FSStore) Get(_ context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}

	d, err := os.ReadFile(s.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "reading object")
	}

	if err := Verify(id, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *FSStore) Has(_ context.Context, id cid.Cid) (bool, error) {
	if !id.Defined() {
		return false, nil
	}

	_, err := os.Stat(s.pathFor(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrap(err, "stat object")
}

func (s *FSStore) tipPath(chainID string) string {
	return filepath.Join(tipsDir(s.root), hex.EncodeToString([]byte(chainID)))
}

func (s *FSStore) GetTip(_ context.Context, chainID string) (cid.Cid, error) {
	d, err := os.ReadFile(s.tipPath(chainID))
	if err != nil {
		if os.IsNotExist(err) {
			return cid.Undef, ErrNotFound
		}
		return cid.Undef, errors.Wrap(err, "reading tip")
	}

	return cid.Cast(d)
}

func (s *FSStore) SetTip(_ context.Context, chainID string, tip cid.Cid) error {
	if !tip.Defined() {
		return ErrInvalidCID
	}

	return errors.Wrap(renameio.WriteFile(s.tipPath(chainID), tip.Bytes(), 0o644), "writing tip")
}

func (s *FSStore) Close() error {
	return nil
}
