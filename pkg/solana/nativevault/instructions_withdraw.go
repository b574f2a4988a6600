package nativevault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-driver/pkg/solana"
)

type WithdrawInstructionAccounts struct {
	User   ed25519.PublicKey
	Escrow ed25519.PublicKey
}

// NewWithdrawInstruction returns the escrowed funds to the user. The amount is
// taken from the escrow's on-chain state, so none is encoded.
func NewWithdrawInstruction(
	program ed25519.PublicKey,
	accounts *WithdrawInstructionAccounts,
) (solana.Instruction, error) {
	// # Account references
	//   0. [WRITE, SIGNER] User
	//   1. [WRITE, SIGNER] Escrow, authorized by the program
	//   2. [] System program
	return solana.BuildInstruction(
		program,

		// Instruction args
		encodeInstructionData(InstructionTypeWithdraw, nil),

		// Instruction accounts
		solana.NewAccountMetaWithRole(accounts.User, solana.AccountRoleSigner),
		solana.NewAccountMetaWithRole(accounts.Escrow, solana.AccountRoleDelegatedAuthority),
		solana.NewAccountMetaWithRole(SYSTEM_PROGRAM_ID, solana.AccountRoleReadonlyReference),
	)
}
