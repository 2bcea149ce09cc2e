package notary

import (
	"encoding/binary"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/cryptography"
	"golang.org/x/crypto/sha3"
)

type Signature struct {
	SignerID  string `msgpack:"i"`
	Signature []byte `msgpack:"s"`
}

// Confirmation is the quorum's proof that NewTip follows its parent
type Confirmation struct {
	ChainID    string      `msgpack:"c"`
	NewTip     cid.Cid     `msgpack:"t"`
	Height     uint64      `msgpack:"h"`
	Signatures []Signature `msgpack:"s"`
}

// VoteDigest is the message every signer signs for a confirmation
func VoteDigest(chainID string, tip cid.Cid, height uint64) []byte {
	h := sha3.New256()
	h.Write([]byte("chaintree/vote\x00"))
	h.Write([]byte(chainID))
	h.Write([]byte{0})
	h.Write(tip.Bytes())

	var hb [8]byte
	binary.BigEndian.PutUint64(hb[:], height)
	h.Write(hb[:])

	return h.Sum(nil)
}

// Verify checks that at least threshold distinct known signers signed the
// confirmation
func (c *Confirmation) Verify(signers SignerSet, threshold int) error {
	if !c.NewTip.Defined() {
		return errors.Wrap(ErrInvalidConfirmation, "undefined tip")
	}

	seen := make(map[string]struct{}, len(c.Signatures))
	sigs := make([][]byte, 0, len(c.Signatures))
	pks := make([]*cryptography.Bls12381PublicKey, 0, len(c.Signatures))

	for _, s := range c.Signatures {
		pk, ok := signers[s.SignerID]
		if !ok {
			return errors.Wrapf(ErrUnknownSigner, "%s", s.SignerID)
		}

		if _, dup := seen[s.SignerID]; dup {
			return errors.Wrapf(ErrInvalidConfirmation, "duplicate signer %s", s.SignerID)
		}

		seen[s.SignerID] = struct{}{}
		sigs = append(sigs, s.Signature)
		pks = append(pks, pk)
	}

	if threshold <= 0 || len(seen) < threshold {
		return errors.Wrapf(ErrInvalidConfirmation, "%d signatures, need %d", len(seen), threshold)
	}

	agg, err := cryptography.AggregateBls12381Signatures(sigs...)
	if err != nil {
		return errors.Wrap(ErrInvalidConfirmation, err.Error())
	}

	apk := cryptography.AggregateBls12381PublicKeys(pks...)
	if err := apk.Verify(agg, VoteDigest(c.ChainID, c.NewTip, c.Height)); err != nil {
		return errors.Wrap(ErrInvalidConfirmation, err.Error())
	}

	return nil
}
