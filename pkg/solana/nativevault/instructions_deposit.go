package nativevault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-driver/pkg/solana"
)

const (
	DepositInstructionArgsSize = 8 // amount
)

type DepositInstructionArgs struct {
	Amount uint64
}

type DepositInstructionAccounts struct {
	User   ed25519.PublicKey
	Escrow ed25519.PublicKey
}

// NewDepositInstruction moves Amount lamports from the user into the user's
// escrow address.
func NewDepositInstruction(
	program ed25519.PublicKey,
	accounts *DepositInstructionAccounts,
	args *DepositInstructionArgs,
) (solana.Instruction, error) {
	// # Account references
	//   0. [WRITE, SIGNER] User
	//   1. [WRITE, SIGNER] Escrow, authorized by the program
	//   2. [] System program
	return solana.BuildInstruction(
		program,

		// Instruction args
		encodeInstructionData(InstructionTypeDeposit, *args),

		// Instruction accounts
		solana.NewAccountMetaWithRole(accounts.User, solana.AccountRoleSigner),
		solana.NewAccountMetaWithRole(accounts.Escrow, solana.AccountRoleDelegatedAuthority),
		solana.NewAccountMetaWithRole(SYSTEM_PROGRAM_ID, solana.AccountRoleReadonlyReference),
	)
}

// DepositInstructionArgsFromBinary decodes the args of an encoded deposit
// payload.
func DepositInstructionArgsFromBinary(data []byte) (*DepositInstructionArgs, error) {
	var args DepositInstructionArgs
	if err := decodeInstructionArgs(data, InstructionTypeDeposit, DepositInstructionArgsSize, &args); err != nil {
		return nil, err
	}
	return &args, nil
}
