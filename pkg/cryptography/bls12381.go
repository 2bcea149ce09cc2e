package cryptography

import (
	"bytes"
	"crypto"
	"io"

	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
	sig "github.com/drand/kyber/sign/bls"
	"github.com/drand/kyber/util/random"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

var (
	_ crypto.PrivateKey = (*Bls12381PrivateKey)(nil)
	_ crypto.PublicKey  = (*Bls12381PublicKey)(nil)

	pairing = bls.NewBLS12381Suite()

	// signatures live on G2, public keys on G1
	scheme = sig.NewSchemeOnG2(pairing)

	ErrInvalidSignature = errors.New("invalid signature")
)

func NewBls12381PrivateKey() *Bls12381PrivateKey {
	return &Bls12381PrivateKey{
		pairing.G1().Scalar().Pick(random.New()),
	}
}

// NewBls12381PrivateKeyFromSeed derives a key deterministically from seed.
// Only meant for development notary groups.
func NewBls12381PrivateKeyFromSeed(seed []byte) *Bls12381PrivateKey {
	h := sha3.Sum256(seed)

	return &Bls12381PrivateKey{
		pairing.G1().Scalar().Pick(random.New(bytes.NewReader(h[:]))),
	}
}

func NewBls12381PrivateKeyFromBytes(b []byte) (*Bls12381PrivateKey, error) {
	sk := pairing.G1().Scalar()
	if err := sk.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrap(err, "unmarshalling bls scalar")
	}

	return &Bls12381PrivateKey{sk}, nil
}

type Bls12381PrivateKey struct {
	sk kyber.Scalar
}

func (b *Bls12381PrivateKey) Sign(_ io.Reader, digest []byte, _ crypto.SignerOpts) (signature []byte, err error) {
	return scheme.Sign(b.sk, digest)
}

func (b *Bls12381PrivateKey) Public() crypto.PublicKey {
	return b.PublicKey()
}

func (b *Bls12381PrivateKey) PublicKey() *Bls12381PublicKey {
	pk := pairing.G1().Point().Mul(b.sk, nil)
	return &Bls12381PublicKey{pk}
}

func (b *Bls12381PrivateKey) Bytes() ([]byte, error) {
	return b.sk.MarshalBinary()
}

func (b *Bls12381PrivateKey) Equal(obls crypto.PrivateKey) bool {
	o, ok := obls.(*Bls12381PrivateKey)
	return ok && b.sk.Equal(o.sk)
}

type Bls12381PublicKey struct {
	kyber.Point
}

func NewBls12381PublicKey(b []byte) (*Bls12381PublicKey, error) {
	pk := &Bls12381PublicKey{pairing.G1().Point()}
	if err := pk.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrap(err, "unmarshalling bls point")
	}

	return pk, nil
}

func (b *Bls12381PublicKey) Bytes() ([]byte, error) {
	return b.Point.MarshalBinary()
}

func (b *Bls12381PublicKey) Verify(signature, msg []byte) error {
	if err := scheme.Verify(b.Point, msg, signature); err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}

	return nil
}

// AggregateBls12381Signatures combines signatures over the same message into
// one that verifies against the aggregate of the signers' public keys
func AggregateBls12381Signatures(sigs ...[]byte) ([]byte, error) {
	if len(sigs) == 0 {
		return nil, errors.New("no signatures to aggregate")
	}

	return scheme.AggregateSignatures(sigs...)
}

func AggregateBls12381PublicKeys(pks ...*Bls12381PublicKey) *Bls12381PublicKey {
	points := make([]kyber.Point, 0, len(pks))
	for _, pk := range pks {
		points = append(points, pk.Point)
	}

	return &Bls12381PublicKey{scheme.AggregatePublicKeys(points...)}
}
