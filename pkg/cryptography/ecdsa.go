package cryptography

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"io"

	ethCrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

type Secp256k1PrivateKey struct {
	*ecdsa.PrivateKey
}

func NewEcdsaSecp256k1PrivateKey() (*Secp256k1PrivateKey, error) {
	pk, err := ecdsa.GenerateKey(ethCrypto.S256(), rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generating ecdsa key")
	}

	return &Secp256k1PrivateKey{pk}, nil
}

func NewSecp256k1PrivateKeyFromBytes(b []byte) (*Secp256k1PrivateKey, error) {
	pk, err := ethCrypto.ToECDSA(b)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling ecdsa key")
	}

	return &Secp256k1PrivateKey{pk}, nil
}

func (p *Secp256k1PrivateKey) Bytes() ([]byte, error) {
	return ethCrypto.FromECDSA(p.PrivateKey), nil
}

// Sign signs the sha3-256 of msg; the result carries the recovery byte
func (p *Secp256k1PrivateKey) Sign(_ io.Reader, msg []byte, _ crypto.SignerOpts) ([]byte, error) {
	h := sha3.Sum256(msg)

	return ethCrypto.Sign(h[:], p.PrivateKey)
}

func (p *Secp256k1PrivateKey) Public() crypto.PublicKey {
	return &Secp256k1PublicKey{p.PublicKey}
}

func NewSecp256k1PublicKey(d []byte) (*Secp256k1PublicKey, error) {
	pub, err := ethCrypto.UnmarshalPubkey(d)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshalling ecdsa pub key")
	}

	return &Secp256k1PublicKey{*pub}, nil
}

type Secp256k1PublicKey struct {
	ecdsa.PublicKey
}

func (p *Secp256k1PublicKey) Bytes() ([]byte, error) {
	return ethCrypto.FromECDSAPub(&p.PublicKey), nil
}

// Address is the ethereum style address of the key
func (p *Secp256k1PublicKey) Address() string {
	return ethCrypto.PubkeyToAddress(p.PublicKey).Hex()
}

func (p *Secp256k1PublicKey) Verify(sig, msg []byte) error {
	if len(sig) == 65 {
		//drop recovery id
		sig = sig[:64]
	}

	h := sha3.Sum256(msg)

	if !ethCrypto.VerifySignature(ethCrypto.FromECDSAPub(&p.PublicKey), h[:], sig) {
		return ErrInvalidSignature
	}

	return nil
}
