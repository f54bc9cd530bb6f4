package address

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const knownAddress = "tl1rn5evt8jyynflgzq32plvrrgtve6zmu8ze4dvh"

func TestFromStringRoundTrip(t *testing.T) {
	addr, err := FromString(knownAddress)
	require.NoError(t, err)
	require.Equal(t, knownAddress, addr.String())
	assert.True(t, Validate(knownAddress))
}

func TestFromPublicKey(t *testing.T) {
	a, err := FromPublicKey(bytes.Repeat([]byte{7}, 64))
	require.NoError(t, err)
	b, err := FromPublicKey(bytes.Repeat([]byte{7}, 64))
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
	assert.True(t, Validate(a.String()))

	c, err := FromPublicKey(bytes.Repeat([]byte{8}, 64))
	require.NoError(t, err)
	assert.NotEqual(t, a.String(), c.String())
}

func TestValidateRejects(t *testing.T) {
	for _, s := range []string{
		"",
		"alice",
		"tl1rn5evt8jyynflgzq32plvrrgtve6zmu8ze4dvx", // bad checksum
		"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", // wrong HRP
	} {
		assert.False(t, Validate(s), s)
	}
}

func TestFromBytesLength(t *testing.T) {
	_, err := FromBytes([]byte{1, 2})
	assert.Error(t, err)
}
