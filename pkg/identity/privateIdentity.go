package identity

import (
	"crypto/ed25519"
	"io"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/cryptography"
)

type KeyType string

const (
	KeyTypeEd25519   KeyType = "ed25519"
	KeyTypeSecp256k1 KeyType = "secp256k1"
)

var (
	ErrUnknownKeyType = errors.New("unknown key type")
)

// PrivateIdentity is the signing material of a chain tree owner
type PrivateIdentity interface {
	Type() KeyType
	Bytes() ([]byte, error)
	PublicIdentity() (*PublicIdentity, error)
	Sign(msg []byte) ([]byte, error)
}

// Generate creates a new identity of the given key type
func Generate(t KeyType, rand io.Reader) (PrivateIdentity, error) {
	switch t {
	case KeyTypeEd25519:
		return GenerateEd25519Identity(rand)
	case KeyTypeSecp256k1:
		sk, err := cryptography.NewEcdsaSecp256k1PrivateKey()
		if err != nil {
			return nil, err
		}
		return &Secp256k1Identity{sk}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKeyType, "%s", t)
	}
}

// FromBytes restores an identity from the output of Bytes
func FromBytes(t KeyType, raw []byte) (PrivateIdentity, error) {
	switch t {
	case KeyTypeEd25519:
		if len(raw) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 key length")
		}
		return NewEd25519Identity(raw), nil
	case KeyTypeSecp256k1:
		sk, err := cryptography.NewSecp256k1PrivateKeyFromBytes(raw)
		if err != nil {
			return nil, err
		}
		return &Secp256k1Identity{sk}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKeyType, "%s", t)
	}
}

type Ed25519Identity struct {
	sk ed25519.PrivateKey
}

func NewEd25519Identity(sk []byte) *Ed25519Identity {
	return &Ed25519Identity{sk: ed25519.PrivateKey(sk)}
}

func GenerateEd25519Identity(rand io.Reader) (*Ed25519Identity, error) {
	_, sk, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, err
	}

	return &Ed25519Identity{sk}, nil
}

func (e *Ed25519Identity) Type() KeyType {
	return KeyTypeEd25519
}

func (e *Ed25519Identity) Bytes() ([]byte, error) {
	return append([]byte(nil), e.sk...), nil
}

func (e *Ed25519Identity) PublicIdentity() (*PublicIdentity, error) {
	pk := e.sk.Public().(ed25519.PublicKey)

	return NewPublicIdentity(KeyTypeEd25519, pk)
}

func (e *Ed25519Identity) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(e.sk, msg), nil
}

type Secp256k1Identity struct {
	sk *cryptography.Secp256k1PrivateKey
}

func (s *Secp256k1Identity) Type() KeyType {
	return KeyTypeSecp256k1
}

func (s *Secp256k1Identity) Bytes() ([]byte, error) {
	return s.sk.Bytes()
}

func (s *Secp256k1Identity) PublicIdentity() (*PublicIdentity, error) {
	pk, err := s.sk.Public().(*cryptography.Secp256k1PublicKey).Bytes()
	if err != nil {
		return nil, err
	}

	return NewPublicIdentity(KeyTypeSecp256k1, pk)
}

func (s *Secp256k1Identity) Sign(msg []byte) ([]byte, error) {
	return s.sk.Sign(nil, msg, nil)
}

func ed25519Address(pk []byte) (string, error) {
	mh, err := multihash.Sum(pk, multihash.SHA3_384, multihash.DefaultLengths[multihash.SHA3_384])
	if err != nil {
		return "", err
	}

	return mh.B58String(), nil
}
