package driver

import (
	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/solana/nativevault"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

// Actors are the identities and addresses taking part in a single run.
// They're created once and read only afterwards.
type Actors struct {
	Operator *common.Account
	User     *common.Account
	Vault    *common.Account
	Escrow   *common.EscrowAccounts
}

// NewActors creates fresh operator, user and vault identities, and derives the
// user's escrow address under program.
func NewActors(program *common.Account, namespace string) (*Actors, error) {
	var accounts [3]*common.Account
	for i := range accounts {
		account, err := common.NewRandomAccount()
		if err != nil {
			return nil, errors.Wrap(err, "error generating actor")
		}
		accounts[i] = account
	}

	escrow, err := accounts[1].GetEscrowAccounts(program, namespace)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving escrow address")
	}

	return &Actors{
		Operator: accounts[0],
		User:     accounts[1],
		Vault:    accounts[2],
		Escrow:   escrow,
	}, nil
}

// Step is a single phase of a run, submitted as its own transaction. The first
// signer pays for the transaction.
type Step struct {
	Phase       common.Phase
	Signers     []*common.Account
	Instruction solana.Instruction
}

func (s *Step) Validate() error {
	if s == nil {
		return errors.New("step is nil")
	}

	if !s.Phase.IsValid() {
		return errors.Errorf("invalid phase: %d", s.Phase)
	}

	if len(s.Signers) == 0 {
		return errors.Errorf("%s step has no payer", s.Phase)
	}

	if len(s.Instruction.Program) == 0 {
		return errors.Errorf("%s step has no instruction", s.Phase)
	}

	return nil
}

// BuildSteps builds the run's phases in execution order:
//
//	Initialize -> Deposit -> Withdraw -> Transfer
//
// The transfer phase, which pays transferLamports from the operator back to
// the user, is only included when transferLamports is positive.
func BuildSteps(program *common.Account, actors *Actors, depositLamports, transferLamports uint64) ([]*Step, error) {
	programId := program.PublicKey().ToBytes()

	initializeIxn, err := nativevault.NewInitializeInstruction(
		programId,
		&nativevault.InitializeInstructionAccounts{
			Operator: actors.Operator.PublicKey().ToBytes(),
			Vault:    actors.Vault.PublicKey().ToBytes(),
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error building initialize instruction")
	}

	depositIxn, err := nativevault.NewDepositInstruction(
		programId,
		&nativevault.DepositInstructionAccounts{
			User:   actors.User.PublicKey().ToBytes(),
			Escrow: actors.Escrow.Escrow.PublicKey().ToBytes(),
		},
		&nativevault.DepositInstructionArgs{
			Amount: depositLamports,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error building deposit instruction")
	}

	withdrawIxn, err := nativevault.NewWithdrawInstruction(
		programId,
		&nativevault.WithdrawInstructionAccounts{
			User:   actors.User.PublicKey().ToBytes(),
			Escrow: actors.Escrow.Escrow.PublicKey().ToBytes(),
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error building withdraw instruction")
	}

	steps := []*Step{
		{
			Phase:       common.PhaseInitialize,
			Signers:     []*common.Account{actors.Operator, actors.Vault},
			Instruction: initializeIxn,
		},
		{
			Phase:       common.PhaseDeposit,
			Signers:     []*common.Account{actors.User},
			Instruction: depositIxn,
		},
		{
			Phase:       common.PhaseWithdraw,
			Signers:     []*common.Account{actors.User},
			Instruction: withdrawIxn,
		},
	}

	if transferLamports == 0 {
		return steps, nil
	}

	transferIxn, err := nativevault.NewTransferInstruction(
		programId,
		&nativevault.TransferInstructionAccounts{
			Payer:     actors.Operator.PublicKey().ToBytes(),
			Recipient: actors.User.PublicKey().ToBytes(),
		},
		&nativevault.TransferInstructionArgs{
			Amount: transferLamports,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error building transfer instruction")
	}

	return append(steps, &Step{
		Phase:       common.PhaseTransfer,
		Signers:     []*common.Account{actors.Operator},
		Instruction: transferIxn,
	}), nil
}
