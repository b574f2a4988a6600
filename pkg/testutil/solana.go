package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-driver/pkg/vault/common"
)

func NewRandomAccount(t *testing.T) *common.Account {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)

	return account
}

// NewRandomProgram returns a public key only account usable as a program id
func NewRandomProgram(t *testing.T) *common.Account {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	account, err := common.NewAccountFromPublicKeyBytes(pub)
	require.NoError(t, err)

	return account
}
