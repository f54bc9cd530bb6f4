package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/blake2b"
)

func TestNewHash(t *testing.T) {
	data := []byte("tl1rn5evt8jyynflgzq32plvrrgtve6zmu8ze4dvh")
	h := NewHash(data)
	assert.Len(t, h.String(), 2*HashSize)
	assert.NotEqual(t, h, NewHash([]byte("other")))

	want := blake2b.Sum256(data)
	assert.Equal(t, want[:], h.Bytes())
}
