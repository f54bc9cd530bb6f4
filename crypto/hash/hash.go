package hash

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const HashSize = 32

type Hash [HashSize]byte

// NewHash returns the Blake2b-256 digest of data.
func NewHash(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte {
	return h[:]
}
