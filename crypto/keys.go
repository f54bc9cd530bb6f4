package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/crypto/address"
	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits gives a 24 word mnemonic.
const MnemonicEntropyBits = 256

var ErrInvalidSignature = errors.New("invalid signature")

type PrivateKey struct {
	sk *mldsa44.PrivateKey
}

type PublicKey struct {
	pk *mldsa44.PublicKey
}

// NewMnemonic returns a fresh BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// SeedFromMnemonic stretches a BIP-39 mnemonic into an ML-DSA-44 seed.
func SeedFromMnemonic(mnemonic, passphrase string) (*[mldsa44.SeedSize]byte, error) {
	full, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mnemonic")
	}
	seed := new([mldsa44.SeedSize]byte)
	copy(seed[:], full[:mldsa44.SeedSize])
	return seed, nil
}

func NewPrivateKeyFromSeed(seed *[mldsa44.SeedSize]byte) *PrivateKey {
	_, sk := mldsa44.NewKeyFromSeed(seed)
	return &PrivateKey{sk: sk}
}

func NewPrivateKeyFromMnemonic(mnemonic, passphrase string) (*PrivateKey, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromSeed(seed), nil
}

func NewPrivateKey() (*PrivateKey, error) {
	_, sk, err := mldsa44.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate key")
	}
	return &PrivateKey{sk: sk}, nil
}

func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{pk: p.sk.Public().(*mldsa44.PublicKey)}
}

func (p *PrivateKey) Sign(msg []byte) ([]byte, error) {
	sig := make([]byte, mldsa44.SignatureSize)
	if err := mldsa44.SignTo(p.sk, msg, nil, false, sig); err != nil {
		return nil, errors.Wrap(err, "failed to sign data")
	}
	return sig, nil
}

// PublicKeyFromHex decodes a packed ML-DSA-44 public key.
func PublicKeyFromHex(s string) (*PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode public key")
	}
	if len(raw) != mldsa44.PublicKeySize {
		return nil, fmt.Errorf("public key should be %d bytes, but it is %d bytes", mldsa44.PublicKeySize, len(raw))
	}
	pk := new(mldsa44.PublicKey)
	if err := pk.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "unpack public key")
	}
	return &PublicKey{pk: pk}, nil
}

func (p *PublicKey) Bytes() []byte {
	return p.pk.Bytes()
}

func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Address is the bech32 address owned by this key.
func (p *PublicKey) Address() (*address.Address, error) {
	return address.FromPublicKey(p.Bytes())
}

func (p *PublicKey) Verify(msg, sig []byte) error {
	if !mldsa44.Verify(p.pk, msg, nil, sig) {
		return ErrInvalidSignature
	}
	return nil
}
