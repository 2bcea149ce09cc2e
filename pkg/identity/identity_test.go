package identity

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/chaintree/pkg/cryptography"
)

func TestIdentitySignVerify(t *testing.T) {
	for _, kt := range []KeyType{KeyTypeEd25519, KeyTypeSecp256k1} {
		t.Run(string(kt), func(t *testing.T) {
			id, err := Generate(kt, rand.Reader)
			require.NoError(t, err)
			assert.Equal(t, kt, id.Type())

			pub, err := id.PublicIdentity()
			require.NoError(t, err)
			assert.NotEmpty(t, pub.Address)

			msg := []byte("candidate")
			sig, err := id.Sign(msg)
			require.NoError(t, err)

			assert.NoError(t, pub.Verify(msg, sig))
			assert.ErrorIs(t, pub.Verify([]byte("tampered"), sig), cryptography.ErrInvalidSignature)

			raw, err := id.Bytes()
			require.NoError(t, err)

			restored, err := FromBytes(kt, raw)
			require.NoError(t, err)

			rpub, err := restored.PublicIdentity()
			require.NoError(t, err)
			assert.Equal(t, pub, rpub)
		})
	}
}

func TestUnknownKeyType(t *testing.T) {
	_, err := Generate("rsa", rand.Reader)
	assert.ErrorIs(t, err, ErrUnknownKeyType)

	_, err = NewPublicIdentity("rsa", []byte{1})
	assert.ErrorIs(t, err, ErrUnknownKeyType)
}
