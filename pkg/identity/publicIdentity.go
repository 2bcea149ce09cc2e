package identity

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/cryptography"
)

// PublicIdentity is the verifiable half of an owner identity. Address is the
// value stored in a tree's owner list.
type PublicIdentity struct {
	Type      KeyType
	PublicKey []byte
	Address   string
}

func NewPublicIdentity(t KeyType, pk []byte) (*PublicIdentity, error) {
	var (
		addr string
		err  error
	)

	switch t {
	case KeyTypeEd25519:
		if len(pk) != ed25519.PublicKeySize {
			return nil, errors.New("invalid ed25519 public key length")
		}
		addr, err = ed25519Address(pk)
	case KeyTypeSecp256k1:
		var pub *cryptography.Secp256k1PublicKey
		pub, err = cryptography.NewSecp256k1PublicKey(pk)
		if err == nil {
			addr = pub.Address()
		}
	default:
		return nil, errors.Wrapf(ErrUnknownKeyType, "%s", t)
	}
	if err != nil {
		return nil, errors.Wrap(err, "deriving address")
	}

	return &PublicIdentity{Type: t, PublicKey: pk, Address: addr}, nil
}

// Verify checks sig over msg
func (p *PublicIdentity) Verify(msg, sig []byte) error {
	switch p.Type {
	case KeyTypeEd25519:
		if !ed25519.Verify(ed25519.PublicKey(p.PublicKey), msg, sig) {
			return cryptography.ErrInvalidSignature
		}
		return nil
	case KeyTypeSecp256k1:
		pub, err := cryptography.NewSecp256k1PublicKey(p.PublicKey)
		if err != nil {
			return err
		}
		return pub.Verify(sig, msg)
	default:
		return errors.Wrapf(ErrUnknownKeyType, "%s", p.Type)
	}
}
