package notary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/cryptography"
)

type Fault uint8

const (
	FaultNone Fault = iota
	// FaultOffline signers never answer
	FaultOffline
	// FaultDelayed signers answer after their configured delay
	FaultDelayed
	// FaultRefusing signers answer every vote with a refusal
	FaultRefusing
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultOffline:
		return "offline"
	case FaultDelayed:
		return "delayed"
	case FaultRefusing:
		return "refusing"
	default:
		return fmt.Sprintf("fault(%d)", uint8(f))
	}
}

// VoteRequest asks a signer to vouch for tip at height
type VoteRequest struct {
	ChainID string
	Tip     cid.Cid
	Height  uint64
}

// Signer is one member of a notary group
type Signer struct {
	id  string
	key *cryptography.Bls12381PrivateKey

	mu    sync.RWMutex
	fault Fault
	delay time.Duration
}

// NewSigner creates a signer whose ID is the multibase form of its public key
func NewSigner(key *cryptography.Bls12381PrivateKey) (*Signer, error) {
	pk, err := key.PublicKey().Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "encoding public key")
	}

	id, err := cryptography.EncodeMultibase(pk)
	if err != nil {
		return nil, err
	}

	return &Signer{id: id, key: key}, nil
}

// NewDevnetSigners derives n signers deterministically from seed
func NewDevnetSigners(seed string, n int) ([]*Signer, error) {
	signers := make([]*Signer, 0, n)

	for i := 0; i < n; i++ {
		s, err := NewSigner(cryptography.NewBls12381PrivateKeyFromSeed([]byte(fmt.Sprintf("%s/%d", seed, i))))
		if err != nil {
			return nil, err
		}
		signers = append(signers, s)
	}

	return signers, nil
}

func (s *Signer) ID() string {
	return s.id
}

func (s *Signer) PublicKey() *cryptography.Bls12381PublicKey {
	return s.key.PublicKey()
}

// SetFault changes how the signer answers votes. delay only applies to
// FaultDelayed.
func (s *Signer) SetFault(f Fault, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fault = f
	s.delay = delay
}

// Vote signs the vote digest for req
func (s *Signer) Vote(ctx context.Context, req *VoteRequest) ([]byte, error) {
	s.mu.RLock()
	fault, delay := s.fault, s.delay
	s.mu.RUnlock()

	switch fault {
	case FaultOffline:
		<-ctx.Done()
		return nil, ctx.Err()
	case FaultDelayed:
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	case FaultRefusing:
		return nil, errors.Wrapf(ErrVoteRefused, "signer %s", s.id)
	}

	if req.ChainID == "" || !req.Tip.Defined() || req.Height == 0 {
		return nil, errors.Wrap(ErrVoteRefused, "malformed vote request")
	}

	return s.key.Sign(nil, VoteDigest(req.ChainID, req.Tip, req.Height), nil)
}
