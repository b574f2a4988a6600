package common

import (
	"bytes"
	"crypto/ed25519"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/solana/nativevault"
)

// Account is an actor or address on the ledger. Actors hold a private key,
// derived addresses only have a public key.
type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

// EscrowAccounts are the accounts backing a user's escrow within the vault
// program.
type EscrowAccounts struct {
	User    *Account
	Program *Account

	Namespace  string
	Escrow     *Account
	EscrowBump uint8
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{
		publicKey: publicKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	return withKey(NewAccountFromPublicKey)(NewKeyFromBytes(publicKey))
}

func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	return withKey(NewAccountFromPublicKey)(NewKeyFromString(publicKey))
}

func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	if err := privateKey.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating private key")
	}
	if privateKey.IsPublic() {
		return nil, errors.New("private key isn't private")
	}

	publicKey, err := NewKeyFromBytes(ed25519.PrivateKey(privateKey.ToBytes()).Public().(ed25519.PublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "error deriving public key")
	}

	account := &Account{
		publicKey:  publicKey,
		privateKey: privateKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	return withKey(NewAccountFromPrivateKey)(NewKeyFromBytes(privateKey))
}

func NewAccountFromPrivateKeyString(privateKey string) (*Account, error) {
	return withKey(NewAccountFromPrivateKey)(NewKeyFromString(privateKey))
}

// withKey adapts an account constructor to a key constructor's results.
func withKey(ctor func(*Key) (*Account, error)) func(*Key, error) (*Account, error) {
	return func(key *Key, err error) (*Account, error) {
		if err != nil {
			return nil, err
		}
		return ctor(key)
	}
}

func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}

	account, err := NewAccountFromPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account")
	}
	return account, nil
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

// HasPrivateKey reports whether the account can sign.
func (a *Account) HasPrivateKey() bool {
	return a.privateKey != nil
}

func (a *Account) Sign(message []byte) ([]byte, error) {
	if a.privateKey == nil {
		return nil, errors.New("private key not available")
	}

	return ed25519.Sign(a.privateKey.ToBytes(), message), nil
}

// GetEscrowAccounts derives the user's escrow address under program. An empty
// namespace uses the program's default.
func (a *Account) GetEscrowAccounts(program *Account, namespace string) (*EscrowAccounts, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating user account")
	}
	if err := program.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating program account")
	}

	if len(namespace) == 0 {
		namespace = nativevault.DefaultEscrowNamespace
	}

	escrowAddress, escrowBump, err := nativevault.GetEscrowAddress(&nativevault.GetEscrowAddressArgs{
		Program:   program.PublicKey().ToBytes(),
		User:      a.PublicKey().ToBytes(),
		Namespace: namespace,
	})
	if err != nil {
		return nil, err
	}

	escrowAccount, err := NewAccountFromPublicKeyBytes(escrowAddress)
	if err != nil {
		return nil, errors.Wrap(err, "invalid escrow address")
	}

	return &EscrowAccounts{
		User:    a,
		Program: program,

		Namespace:  namespace,
		Escrow:     escrowAccount,
		EscrowBump: escrowBump,
	}, nil
}

// IsOnCurve reports whether a private key could exist for the account.
// Program derived addresses are never on the curve.
func (a *Account) IsOnCurve() bool {
	return isOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}

	if err := a.publicKey.Validate(); err != nil {
		return errors.Wrap(err, "invalid public key")
	}
	if !a.publicKey.IsPublic() {
		return errors.New("public key isn't public")
	}

	if a.privateKey == nil {
		return nil
	}

	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "invalid private key")
	}
	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	derived := ed25519.PrivateKey(a.privateKey.ToBytes()).Public().(ed25519.PublicKey)
	if !bytes.Equal(a.publicKey.ToBytes(), derived) {
		return errors.New("private key doesn't map to public key")
	}
	return nil
}

func (a *Account) String() string {
	return a.PublicKey().ToBase58()
}

// Equals compares accounts by public key.
func (a *Account) Equals(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return bytes.Equal(a.PublicKey().ToBytes(), other.PublicKey().ToBytes())
}

// Equals compares escrow derivations by address and bump.
func (e *EscrowAccounts) Equals(other *EscrowAccounts) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Escrow.Equals(other.Escrow) && e.EscrowBump == other.EscrowBump
}

func isOnCurve(pubKey ed25519.PublicKey) bool {
	if len(pubKey) != ed25519.PublicKeySize {
		return false
	}

	_, err := new(edwards25519.Point).SetBytes(pubKey)
	return err == nil
}
