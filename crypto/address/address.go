package address

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/thrylos-labs/stakeledger/crypto/hash"
)

const (
	// AddressWords is the number of 5-bit words in the data part of the Bech32 address.
	// Derived from 20 bytes hash -> 160 bits / 5 bits/word = 32 words.
	AddressWords = 32
	AddressHRP   = "tl" // Human-Readable Part
)

// Address holds the 32 5-bit words of the data part.
type Address [AddressWords]byte

// FromPublicKey derives an Address from the first 20 bytes of the
// Blake2b-256 hash of a public key.
func FromPublicKey(pubKey []byte) (*Address, error) {
	return FromBytes(hash.NewHash(pubKey).Bytes()[:20])
}

// FromBytes converts 20 raw bytes into an Address.
func FromBytes(raw []byte) (*Address, error) {
	if len(raw) != 20 {
		return nil, fmt.Errorf("address needs 20 bytes, got %d", len(raw))
	}
	words, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return nil, fmt.Errorf("failed to convert bytes to 5-bit words: %v", err)
	}
	if len(words) != AddressWords {
		return nil, fmt.Errorf("unexpected number of words after conversion: got %d, want %d", len(words), AddressWords)
	}

	var address Address
	copy(address[:], words)
	return &address, nil
}

// Validate checks if a string is a valid Bech32 address with the correct HRP and data length.
func Validate(addr string) bool {
	_, err := FromString(addr)
	return err == nil
}

// FromString converts a bech32 address string to an Address.
func FromString(addr string) (*Address, error) {
	hrp, words, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bech32 address '%s': %v", addr, err)
	}
	if hrp != AddressHRP {
		return nil, fmt.Errorf("invalid address HRP: expected '%s', got '%s'", AddressHRP, hrp)
	}
	if len(words) != AddressWords {
		return nil, fmt.Errorf("invalid decoded data length: expected %d words, got %d", AddressWords, len(words))
	}

	var newAddr Address
	copy(newAddr[:], words)
	return &newAddr, nil
}

// String encodes the stored 5-bit words into a Bech32 string.
func (a *Address) String() string {
	encoded, err := bech32.Encode(AddressHRP, a[:])
	if err != nil {
		return ""
	}
	return encoded
}
