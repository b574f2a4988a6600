package common

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/solana/nativevault"
)

func TestAccountFromKeys(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	fromPublic, err := NewAccountFromPublicKeyBytes(pub)
	require.NoError(t, err)
	assert.False(t, fromPublic.HasPrivateKey())
	assert.Equal(t, base58.Encode(pub), fromPublic.String())

	fromPublicString, err := NewAccountFromPublicKeyString(base58.Encode(pub))
	require.NoError(t, err)
	assert.True(t, fromPublic.Equals(fromPublicString))

	fromPrivate, err := NewAccountFromPrivateKeyBytes(priv)
	require.NoError(t, err)
	assert.True(t, fromPrivate.HasPrivateKey())
	assert.True(t, fromPrivate.Equals(fromPublic))

	fromPrivateString, err := NewAccountFromPrivateKeyString(base58.Encode(priv))
	require.NoError(t, err)
	assert.True(t, fromPrivateString.Equals(fromPublic))

	_, err = NewAccountFromPublicKeyBytes(priv)
	assert.Error(t, err)

	_, err = NewAccountFromPrivateKeyBytes(pub)
	assert.Error(t, err)

	_, err = NewAccountFromPublicKeyBytes([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = NewAccountFromPublicKeyString("0OIl")
	assert.Error(t, err)
}

func TestAccountSign(t *testing.T) {
	account, err := NewRandomAccount()
	require.NoError(t, err)

	message := []byte("message")
	sig, err := account.Sign(message)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(account.PublicKey().ToBytes(), message, sig))

	publicOnly, err := NewAccountFromPublicKey(account.PublicKey())
	require.NoError(t, err)
	_, err = publicOnly.Sign(message)
	assert.Error(t, err)
}

func TestGetEscrowAccounts(t *testing.T) {
	program, err := NewRandomAccount()
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		user, err := NewRandomAccount()
		require.NoError(t, err)
		assert.True(t, user.IsOnCurve())

		first, err := user.GetEscrowAccounts(program, "")
		require.NoError(t, err)
		assert.Equal(t, nativevault.DefaultEscrowNamespace, first.Namespace)
		assert.False(t, first.Escrow.IsOnCurve())
		assert.False(t, first.Escrow.HasPrivateKey())
		assert.False(t, solana.IsOnCurve(first.Escrow.PublicKey().ToBytes()))

		second, err := user.GetEscrowAccounts(program, nativevault.DefaultEscrowNamespace)
		require.NoError(t, err)
		assert.True(t, first.Equals(second))

		expected, expectedBump, err := solana.FindProgramAddressAndBump(
			program.PublicKey().ToBytes(),
			[]byte("SSF_PDA"),
			user.PublicKey().ToBytes(),
		)
		require.NoError(t, err)
		assert.EqualValues(t, expected, first.Escrow.PublicKey().ToBytes())
		assert.Equal(t, expectedBump, first.EscrowBump)
	}

	var nilAccount *Account
	_, err = nilAccount.GetEscrowAccounts(program, "")
	assert.Error(t, err)
}

func TestPhase(t *testing.T) {
	for _, tc := range []struct {
		phase   Phase
		name    string
		isValid bool
	}{
		{PhaseUnknown, "unknown", false},
		{PhaseInitialize, "initialize", true},
		{PhaseDeposit, "deposit", true},
		{PhaseWithdraw, "withdraw", true},
		{PhaseTransfer, "transfer", true},
		{Phase(42), "unknown", false},
	} {
		assert.Equal(t, tc.name, tc.phase.String())
		assert.Equal(t, tc.isValid, tc.phase.IsValid())
	}

	assert.True(t, PhaseInitialize < PhaseDeposit)
	assert.True(t, PhaseDeposit < PhaseWithdraw)
	assert.True(t, PhaseWithdraw < PhaseTransfer)
}
