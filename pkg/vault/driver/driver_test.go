package driver

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/solana/nativevault"
	"github.com/code-payments/vault-driver/pkg/testutil"
	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
	run_memory_client "github.com/code-payments/vault-driver/pkg/vault/data/run/memory"
)

func TestDriver_EndToEnd(t *testing.T) {
	env := setupDriverTest(t, &testOverrides{
		escrowNamespace: "SSF_PDA",
		depositLamports: 1,
	})
	ctx := context.Background()

	result, err := env.driver.Run(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, result.RunId)
	assert.True(t, result.Program.Equals(env.program))

	actors := result.Actors
	require.NotNil(t, actors)

	// Operator and user are funded before any phase is submitted
	require.Len(t, env.funder.funded, 2)
	assert.True(t, env.funder.funded[0].account.Equals(actors.Operator))
	assert.True(t, env.funder.funded[1].account.Equals(actors.User))
	for _, funded := range env.funder.funded {
		assert.EqualValues(t, 2*solana.LamportsPerSol, funded.lamports)
	}

	escrow, bump, err := nativevault.GetEscrowAddress(&nativevault.GetEscrowAddressArgs{
		Program:   env.program.PublicKey().ToBytes(),
		User:      actors.User.PublicKey().ToBytes(),
		Namespace: "SSF_PDA",
	})
	require.NoError(t, err)
	assert.EqualValues(t, escrow, actors.Escrow.Escrow.PublicKey().ToBytes())
	assert.Equal(t, bump, actors.Escrow.EscrowBump)

	// Phases execute strictly in order, one transaction each
	require.Len(t, env.submitter.submissions, 3)
	for i, expectedType := range []nativevault.InstructionType{
		nativevault.InstructionTypeInitialize,
		nativevault.InstructionTypeDeposit,
		nativevault.InstructionTypeWithdraw,
	} {
		submitted := env.submitter.submissions[i]
		assert.EqualValues(t, env.program.PublicKey().ToBytes(), submitted.instruction.Program)

		actualType, err := nativevault.GetInstructionType(submitted.instruction.Data)
		require.NoError(t, err)
		assert.Equal(t, expectedType, actualType)
	}

	initialize := env.submitter.submissions[0]
	assert.Equal(t, []*common.Account{actors.Operator, actors.Vault}, initialize.signers)
	assert.Equal(t, make([]byte, nativevault.VaultAccountLayout.InstructionDataSize()), initialize.instruction.Data)

	deposit := env.submitter.submissions[1]
	assert.Equal(t, []*common.Account{actors.User}, deposit.signers)
	assert.Equal(t, []byte{0x01, 0x01, 0, 0, 0, 0, 0, 0, 0}, deposit.instruction.Data[:9])
	assert.Len(t, deposit.instruction.Data, nativevault.EscrowAccountLayout.InstructionDataSize())
	assert.EqualValues(t, escrow, deposit.instruction.Accounts[1].PublicKey)

	withdraw := env.submitter.submissions[2]
	assert.Equal(t, []*common.Account{actors.User}, withdraw.signers)
	assert.Len(t, withdraw.instruction.Data, len(deposit.instruction.Data))
	assert.EqualValues(t, escrow, withdraw.instruction.Accounts[1].PublicKey)

	require.Len(t, result.Signatures, 3)
	for i, phase := range []common.Phase{common.PhaseInitialize, common.PhaseDeposit, common.PhaseWithdraw} {
		assert.Equal(t, env.submitter.submissions[i].signature, result.Signatures[phase])
	}

	records, err := env.runs.GetAllByRun(ctx, result.RunId)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, run.StateConfirmed, record.State)
	}

	// Re-deriving after the run yields the same escrow
	rederived, err := actors.User.GetEscrowAccounts(env.program, "SSF_PDA")
	require.NoError(t, err)
	assert.True(t, rederived.Equals(actors.Escrow))
}

func TestDriver_FreshActorsPerRun(t *testing.T) {
	env := setupDriverTest(t, &testOverrides{depositLamports: 1})
	ctx := context.Background()

	first, err := env.driver.Run(ctx)
	require.NoError(t, err)
	second, err := env.driver.Run(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunId, second.RunId)
	assert.False(t, first.Actors.User.Equals(second.Actors.User))
	assert.False(t, first.Actors.Escrow.Equals(second.Actors.Escrow))
	assert.Len(t, env.submitter.submissions, 6)
}

func TestDriver_TransferPhase(t *testing.T) {
	env := setupDriverTest(t, &testOverrides{
		depositLamports:  1,
		transferLamports: 1000,
		skipFunding:      true,
	})

	result, err := env.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, env.funder.funded)

	require.Len(t, env.submitter.submissions, 4)
	transfer := env.submitter.submissions[3]
	assert.Equal(t, []*common.Account{result.Actors.Operator}, transfer.signers)

	args, err := nativevault.TransferInstructionArgsFromBinary(transfer.instruction.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 1000, args.Amount)

	assert.Contains(t, result.Signatures, common.PhaseTransfer)
}

func TestDriver_SubmissionFailure(t *testing.T) {
	env := setupDriverTest(t, &testOverrides{depositLamports: 1})
	env.submitter.failAt = 1

	result, err := env.driver.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, result.Signatures)
	assert.Len(t, env.submitter.submissions, 1)

	record, err := env.runs.Get(context.Background(), result.RunId, common.PhaseInitialize)
	require.NoError(t, err)
	assert.Equal(t, run.StateFailed, record.State)
}

func TestDriver_FundingFailure(t *testing.T) {
	env := setupDriverTest(t, &testOverrides{depositLamports: 1})
	env.funder.fundErr = errors.New("faucet unavailable")

	_, err := env.driver.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, env.submitter.submissions)
}

func TestDriver_InvalidConfig(t *testing.T) {
	program := testutil.NewRandomProgram(t)

	for _, overrides := range []*testOverrides{
		{depositLamports: 1},
		{programId: "invalid", depositLamports: 1},
		{programId: program.String(), depositLamports: 0},
	} {
		submitter := &fakeSubmitter{}
		funder := &fakeFunder{}
		driver := New(funder, NewLinearSequencer(submitter, run_memory_client.New()), withManualTestOverrides(overrides))

		_, err := driver.Run(context.Background())
		assert.Error(t, err)
		assert.Empty(t, funder.funded)
		assert.Empty(t, submitter.submissions)
	}

	driver := New(&fakeFunder{}, NewLinearSequencer(&fakeSubmitter{}, run_memory_client.New()), withManualTestOverrides(&testOverrides{depositLamports: 1}))
	_, err := driver.Run(context.Background())
	assert.Equal(t, ErrMissingProgram, err)
}

type driverTestEnv struct {
	program   *common.Account
	submitter *fakeSubmitter
	funder    *fakeFunder
	runs      run.Store
	driver    *Driver
}

func setupDriverTest(t *testing.T, overrides *testOverrides) *driverTestEnv {
	program := testutil.NewRandomProgram(t)
	overrides.programId = program.String()

	submitter := &fakeSubmitter{}
	funder := &fakeFunder{}
	runs := run_memory_client.New()

	return &driverTestEnv{
		program:   program,
		submitter: submitter,
		funder:    funder,
		runs:      runs,
		driver:    New(funder, NewLinearSequencer(submitter, runs), withManualTestOverrides(overrides)),
	}
}
