package nativevault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-driver/pkg/solana"
)

type InitializeInstructionAccounts struct {
	Operator ed25519.PublicKey
	Vault    ed25519.PublicKey
}

// NewInitializeInstruction creates the vault account owned by the operator.
// Both the operator and the fresh vault identity sign.
func NewInitializeInstruction(
	program ed25519.PublicKey,
	accounts *InitializeInstructionAccounts,
) (solana.Instruction, error) {
	// # Account references
	//   0. [WRITE, SIGNER] Operator, funds the vault and becomes its owner
	//   1. [WRITE, SIGNER] Vault
	//   2. [] System program
	return solana.BuildInstruction(
		program,

		// Instruction args
		encodeInstructionData(InstructionTypeInitialize, nil),

		// Instruction accounts
		solana.NewAccountMetaWithRole(accounts.Operator, solana.AccountRoleSigner),
		solana.NewAccountMetaWithRole(accounts.Vault, solana.AccountRoleSigner),
		solana.NewAccountMetaWithRole(SYSTEM_PROGRAM_ID, solana.AccountRoleReadonlyReference),
	)
}
