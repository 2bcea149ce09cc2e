package notary

import (
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/storage"
	"golang.org/x/crypto/sha3"
)

// Submission is a candidate block signed by one of the chain's owners
type Submission struct {
	ChainID   string           `msgpack:"c"`
	Parent    []byte           `msgpack:"p"`
	Block     []byte           `msgpack:"b"`
	Nodes     [][]byte         `msgpack:"n,omitempty"`
	KeyType   identity.KeyType `msgpack:"kt"`
	PublicKey []byte           `msgpack:"pk"`
	Signature []byte           `msgpack:"s"`
}

// NewSubmission signs a candidate for submission
func NewSubmission(c *chaintree.Candidate, signer identity.PrivateIdentity) (*Submission, error) {
	pub, err := signer.PublicIdentity()
	if err != nil {
		return nil, errors.Wrap(err, "getting public identity")
	}

	sig, err := signer.Sign(SubmissionDigest(c.ChainID, c.ID))
	if err != nil {
		return nil, errors.Wrap(err, "signing submission")
	}

	return &Submission{
		ChainID:   c.ChainID,
		Parent:    c.Parent.Bytes(),
		Block:     c.Bytes,
		Nodes:     c.Nodes,
		KeyType:   pub.Type,
		PublicKey: pub.PublicKey,
		Signature: sig,
	}, nil
}

func (s *Submission) BlockID() (cid.Cid, error) {
	return storage.Sum(s.Block)
}

func (s *Submission) ParentTip() (cid.Cid, error) {
	return cid.Cast(s.Parent)
}

// Signer verifies the owner signature and returns the signing identity
func (s *Submission) Signer() (*identity.PublicIdentity, error) {
	id, err := s.BlockID()
	if err != nil {
		return nil, err
	}

	pub, err := identity.NewPublicIdentity(s.KeyType, s.PublicKey)
	if err != nil {
		return nil, err
	}

	if err := pub.Verify(SubmissionDigest(s.ChainID, id), s.Signature); err != nil {
		return nil, err
	}

	return pub, nil
}

// SubmissionDigest is what owners sign to authorise a block
func SubmissionDigest(chainID string, block cid.Cid) []byte {
	h := sha3.New256()
	h.Write([]byte("chaintree/submission\x00"))
	h.Write([]byte(chainID))
	h.Write([]byte{0})
	h.Write(block.Bytes())

	return h.Sum(nil)
}
