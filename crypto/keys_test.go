package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrylos-labs/stakeledger/crypto/address"
)

func TestMnemonicDerivationIsDeterministic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)

	a, err := NewPrivateKeyFromMnemonic(mnemonic, "")
	require.NoError(t, err)
	b, err := NewPrivateKeyFromMnemonic(mnemonic, "")
	require.NoError(t, err)
	assert.Equal(t, a.PublicKey().Bytes(), b.PublicKey().Bytes())

	c, err := NewPrivateKeyFromMnemonic(mnemonic, "passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey().Bytes(), c.PublicKey().Bytes())

	_, err = NewPrivateKeyFromMnemonic("not a mnemonic", "")
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	sk, err := NewPrivateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	msg := []byte("stake 1000")
	sig, err := sk.Sign(msg)
	require.NoError(t, err)
	assert.NoError(t, pk.Verify(msg, sig))
	assert.ErrorIs(t, pk.Verify([]byte("stake 1001"), sig), ErrInvalidSignature)

	other, err := NewPrivateKey()
	require.NoError(t, err)
	assert.ErrorIs(t, other.PublicKey().Verify(msg, sig), ErrInvalidSignature)
}

func TestPublicKeyHexAndAddress(t *testing.T) {
	sk, err := NewPrivateKey()
	require.NoError(t, err)
	pk := sk.PublicKey()

	decoded, err := PublicKeyFromHex(pk.String())
	require.NoError(t, err)
	assert.Equal(t, pk.Bytes(), decoded.Bytes())

	addr, err := decoded.Address()
	require.NoError(t, err)
	assert.True(t, address.Validate(addr.String()))

	_, err = PublicKeyFromHex("abcd")
	assert.Error(t, err)
	_, err = PublicKeyFromHex("zz")
	assert.Error(t, err)
}
