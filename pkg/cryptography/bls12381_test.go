package cryptography

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyBls12381(t *testing.T) {
	sk := NewBls12381PrivateKey()
	pk := sk.PublicKey()

	pkb, err := pk.Bytes()
	require.NoError(t, err)

	pkmb, err := EncodeMultibase(pkb)
	require.NoError(t, err)

	raw, err := DecodeMultibase(pkmb)
	require.NoError(t, err)

	decoded, err := NewBls12381PublicKey(raw)
	require.NoError(t, err)

	msg := []byte("abc")

	sig, err := sk.Sign(nil, msg, nil)
	require.NoError(t, err)

	assert.NoError(t, decoded.Verify(sig, msg))
	assert.ErrorIs(t, decoded.Verify(sig, []byte("abd")), ErrInvalidSignature)
}

func TestBls12381FromSeed(t *testing.T) {
	a := NewBls12381PrivateKeyFromSeed([]byte("seed-1"))
	b := NewBls12381PrivateKeyFromSeed([]byte("seed-1"))
	c := NewBls12381PrivateKeyFromSeed([]byte("seed-2"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))

	raw, err := a.Bytes()
	require.NoError(t, err)

	d, err := NewBls12381PrivateKeyFromBytes(raw)
	require.NoError(t, err)
	assert.True(t, a.Equal(d))
}

func TestAggregateBls12381(t *testing.T) {
	msg := []byte("vote")

	keys := []*Bls12381PrivateKey{
		NewBls12381PrivateKeyFromSeed([]byte("1")),
		NewBls12381PrivateKeyFromSeed([]byte("2")),
		NewBls12381PrivateKeyFromSeed([]byte("3")),
	}

	sigs := [][]byte{}
	pks := []*Bls12381PublicKey{}
	for _, k := range keys {
		s, err := k.Sign(nil, msg, nil)
		require.NoError(t, err)
		sigs = append(sigs, s)
		pks = append(pks, k.PublicKey())
	}

	agg, err := AggregateBls12381Signatures(sigs...)
	require.NoError(t, err)

	assert.NoError(t, AggregateBls12381PublicKeys(pks...).Verify(agg, msg))
	assert.Error(t, AggregateBls12381PublicKeys(pks[:2]...).Verify(agg, msg))
}
