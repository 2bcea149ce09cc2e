package wallet

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/cryptography"
	"github.com/tcfw/chaintree/pkg/identity"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound = errors.New("identity not found")
	ErrExists   = errors.New("identity already exists")
)

type walletFile struct {
	Identities []walletIdentity `yaml:"identities"`
}

type walletIdentity struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Key    string   `yaml:"key"`
	Chains []string `yaml:"chains,omitempty"`
}

// FileStore keeps owner identities and the chain trees they created in a
// yaml file
type FileStore struct {
	path string
	data walletFile
	idx  map[string]identity.PrivateIdentity

	mu sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	f := &FileStore{path: path}
	if err := f.read(); err != nil {
		return nil, err
	}

	return f, nil
}

func (fs *FileStore) read() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	d, err := os.ReadFile(fs.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "reading wallet file")
	}

	if err := yaml.Unmarshal(d, &fs.data); err != nil {
		return errors.Wrap(err, "unmarshalling wallet data")
	}

	return fs.buildIdx()
}

func (fs *FileStore) buildIdx() error {
	//assumes locked fs.mu

	fs.idx = make(map[string]identity.PrivateIdentity, len(fs.data.Identities))

	for _, wid := range fs.data.Identities {
		raw, err := cryptography.DecodeMultibase(wid.Key)
		if err != nil {
			return errors.Wrapf(err, "decoding key of %s", wid.Name)
		}

		id, err := identity.FromBytes(identity.KeyType(wid.Type), raw)
		if err != nil {
			return errors.Wrapf(err, "decoding identity %s", wid.Name)
		}

		fs.idx[wid.Name] = id
	}

	return nil
}

func (fs *FileStore) write() error {
	//assumes locked fs.mu

	if err := os.MkdirAll(filepath.Dir(fs.path), 0700); err != nil {
		return errors.Wrap(err, "creating wallet dir")
	}

	d, err := yaml.Marshal(&fs.data)
	if err != nil {
		return errors.Wrap(err, "marshalling wallet data")
	}

	return renameio.WriteFile(fs.path, d, 0600)
}

// Add stores id under name
func (fs *FileStore) Add(name string, id identity.PrivateIdentity) error {
	if name == "" {
		return errors.New("identity name is required")
	}

	raw, err := id.Bytes()
	if err != nil {
		return err
	}

	key, err := cryptography.EncodeMultibase(raw)
	if err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.idx[name]; ok {
		return errors.Wrapf(ErrExists, "%s", name)
	}

	fs.data.Identities = append(fs.data.Identities, walletIdentity{
		Name: name,
		Type: string(id.Type()),
		Key:  key,
	})
	fs.idx[name] = id

	return fs.write()
}

func (fs *FileStore) Find(name string) (identity.PrivateIdentity, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	i, ok := fs.idx[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s", name)
	}

	return i, nil
}

// List returns the stored identity names in order
func (fs *FileStore) List() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	names := make([]string, 0, len(fs.idx))
	for n := range fs.idx {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// AddChain records that name owns chainID
func (fs *FileStore) AddChain(name, chainID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := range fs.data.Identities {
		wid := &fs.data.Identities[i]
		if wid.Name != name {
			continue
		}

		for _, c := range wid.Chains {
			if c == chainID {
				return nil
			}
		}

		wid.Chains = append(wid.Chains, chainID)
		return fs.write()
	}

	return errors.Wrapf(ErrNotFound, "%s", name)
}

func (fs *FileStore) Chains(name string) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for _, wid := range fs.data.Identities {
		if wid.Name == name {
			return append([]string(nil), wid.Chains...), nil
		}
	}

	return nil, errors.Wrapf(ErrNotFound, "%s", name)
}
