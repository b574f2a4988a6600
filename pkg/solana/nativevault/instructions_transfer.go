package nativevault

import (
	"crypto/ed25519"

	"github.com/code-payments/vault-driver/pkg/solana"
)

type TransferInstructionArgs struct {
	Amount uint64
}

type TransferInstructionAccounts struct {
	Payer     ed25519.PublicKey
	Recipient ed25519.PublicKey
}

// NewTransferInstruction has the program move Amount lamports from the payer
// to the recipient through the system program.
func NewTransferInstruction(
	program ed25519.PublicKey,
	accounts *TransferInstructionAccounts,
	args *TransferInstructionArgs,
) (solana.Instruction, error) {
	// # Account references
	//   0. [WRITE, SIGNER] Payer
	//   1. [WRITE] Recipient
	//   2. [] System program
	return solana.BuildInstruction(
		program,

		// Instruction args
		encodeInstructionData(InstructionTypeTransfer, *args),

		// Instruction accounts
		solana.NewAccountMetaWithRole(accounts.Payer, solana.AccountRoleSigner),
		solana.NewAccountMetaWithRole(accounts.Recipient, solana.AccountRoleWritableOnly),
		solana.NewAccountMetaWithRole(SYSTEM_PROGRAM_ID, solana.AccountRoleReadonlyReference),
	)
}

// TransferInstructionArgsFromBinary decodes the args of an encoded transfer
// payload.
func TransferInstructionArgsFromBinary(data []byte) (*TransferInstructionArgs, error) {
	var args TransferInstructionArgs
	if err := decodeInstructionArgs(data, InstructionTypeTransfer, transferInstructionArgsSize, &args); err != nil {
		return nil, err
	}
	return &args, nil
}
