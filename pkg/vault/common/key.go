package common

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Key is a 32 byte ed25519 public key or a 64 byte private key, kept together
// with its base58 encoding.
type Key struct {
	raw     []byte
	encoded string
}

func NewKeyFromBytes(value []byte) (*Key, error) {
	return newKey(value, base58.Encode(value))
}

func NewKeyFromString(value string) (*Key, error) {
	raw, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding base58 key")
	}
	return newKey(raw, value)
}

func NewRandomKey() (*Key, error) {
	_, private, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error generating key pair")
	}
	return NewKeyFromBytes(private)
}

func newKey(raw []byte, encoded string) (*Key, error) {
	k := &Key{raw: raw, encoded: encoded}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Key) ToBytes() []byte {
	return k.raw
}

func (k *Key) ToBase58() string {
	return k.encoded
}

func (k *Key) IsPublic() bool {
	return len(k.raw) == ed25519.PublicKeySize
}

func (k *Key) Validate() error {
	if k == nil {
		return errors.New("key is nil")
	}

	switch len(k.raw) {
	case ed25519.PublicKeySize, ed25519.PrivateKeySize:
	default:
		return errors.Errorf("invalid ed25519 key length: %d", len(k.raw))
	}

	if base58.Encode(k.raw) != k.encoded {
		return errors.New("key bytes and base58 encoding differ")
	}
	return nil
}
