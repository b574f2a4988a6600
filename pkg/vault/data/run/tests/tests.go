package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
)

func RunTests(t *testing.T, s run.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s run.Store){
		testRoundTrip,
		testGetAllByRun,
		testInvalidRecords,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s run.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()
		start := time.Now()

		record := &run.Record{
			RunId:   "run1",
			Phase:   common.PhaseDeposit,
			Program: "program",
			Payer:   "payer",
			State:   run.StateSubmitted,
		}
		cloned := record.Clone()

		_, err := s.Get(ctx, record.RunId, record.Phase)
		assert.Equal(t, run.ErrRunNotFound, err)

		require.NoError(t, s.Save(ctx, record))
		assert.True(t, record.Id > 0)
		assert.True(t, record.CreatedAt.After(start))

		actual, err := s.Get(ctx, cloned.RunId, cloned.Phase)
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		record.Signature = "signature"
		record.State = run.StateConfirmed
		cloned = record.Clone()

		require.NoError(t, s.Save(ctx, record))

		actual, err = s.Get(ctx, cloned.RunId, cloned.Phase)
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		// Immutable fields are never overwritten by an upsert
		record.Program = "other_program"
		record.State = run.StateFailed
		record.Error = "transaction failed"
		require.NoError(t, s.Save(ctx, record))
		assert.Equal(t, "program", record.Program)

		actual, err = s.Get(ctx, cloned.RunId, cloned.Phase)
		require.NoError(t, err)
		assert.Equal(t, "program", actual.Program)
		assert.Equal(t, run.StateFailed, actual.State)
		assert.Equal(t, "transaction failed", actual.Error)

		_, err = s.Get(ctx, cloned.RunId, common.PhaseWithdraw)
		assert.Equal(t, run.ErrRunNotFound, err)
	})
}

func testGetAllByRun(t *testing.T, s run.Store) {
	t.Run("testGetAllByRun", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByRun(ctx, "run1")
		assert.Equal(t, run.ErrRunNotFound, err)

		// Saved out of order to check the result is ordered by phase
		for _, phase := range []common.Phase{
			common.PhaseWithdraw,
			common.PhaseInitialize,
			common.PhaseDeposit,
		} {
			require.NoError(t, s.Save(ctx, &run.Record{
				RunId:     "run1",
				Phase:     phase,
				Program:   "program",
				Payer:     "payer",
				Signature: "signature_" + phase.String(),
				State:     run.StateConfirmed,
			}))
		}

		require.NoError(t, s.Save(ctx, &run.Record{
			RunId:   "run2",
			Phase:   common.PhaseInitialize,
			Program: "program",
			Payer:   "payer",
			State:   run.StateFailed,
			Error:   "insufficient funds",
		}))

		actual, err := s.GetAllByRun(ctx, "run1")
		require.NoError(t, err)
		require.Len(t, actual, 3)
		assert.Equal(t, common.PhaseInitialize, actual[0].Phase)
		assert.Equal(t, common.PhaseDeposit, actual[1].Phase)
		assert.Equal(t, common.PhaseWithdraw, actual[2].Phase)
		for _, record := range actual {
			assert.Equal(t, "run1", record.RunId)
			assert.Equal(t, "signature_"+record.Phase.String(), record.Signature)
		}

		actual, err = s.GetAllByRun(ctx, "run2")
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.Equal(t, run.StateFailed, actual[0].State)
	})
}

func testInvalidRecords(t *testing.T, s run.Store) {
	t.Run("testInvalidRecords", func(t *testing.T) {
		ctx := context.Background()

		valid := run.Record{
			RunId:     "run1",
			Phase:     common.PhaseInitialize,
			Program:   "program",
			Payer:     "payer",
			Signature: "signature",
			State:     run.StateConfirmed,
		}

		for _, mutate := range []func(r *run.Record){
			func(r *run.Record) { r.RunId = "" },
			func(r *run.Record) { r.Phase = common.PhaseUnknown },
			func(r *run.Record) { r.Program = "" },
			func(r *run.Record) { r.Payer = "" },
			func(r *run.Record) { r.State = run.StateUnknown },
			func(r *run.Record) { r.Signature = "" },
			func(r *run.Record) { r.State = run.StateFailed },
		} {
			record := valid.Clone()
			mutate(&record)
			assert.Error(t, s.Save(ctx, &record))
		}

		_, err := s.GetAllByRun(ctx, "run1")
		assert.Equal(t, run.ErrRunNotFound, err)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *run.Record) {
	assert.Equal(t, obj1.RunId, obj2.RunId)
	assert.Equal(t, obj1.Phase, obj2.Phase)
	assert.Equal(t, obj1.Program, obj2.Program)
	assert.Equal(t, obj1.Payer, obj2.Payer)
	assert.Equal(t, obj1.Signature, obj2.Signature)
	assert.Equal(t, obj1.State, obj2.State)
	assert.Equal(t, obj1.Error, obj2.Error)
}
