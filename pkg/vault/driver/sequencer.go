package driver

import (
	"context"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-driver/pkg/metrics"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
)

const (
	sequencerMetricsStructName = "driver.linear_sequencer"
)

var (
	ErrPhaseOutOfOrder = errors.New("phases must be strictly increasing")
	ErrNoSteps         = errors.New("no steps to run")
)

// Submitter submits instructions as a single transaction, signed by signers,
// and blocks until it's confirmed. signers[0] pays for the transaction.
type Submitter interface {
	Submit(ctx context.Context, signers []*common.Account, instructions ...solana.Instruction) (solana.Signature, error)
}

// Sequencer executes the steps of a run. Implementations decide how phases are
// scheduled, retried or recovered; encoding and derivation happen before steps
// reach a Sequencer.
type Sequencer interface {
	// Run executes steps and returns the signature of every confirmed phase.
	// On failure, the signatures of the phases confirmed so far are returned
	// with the error.
	Run(ctx context.Context, runId string, steps ...*Step) (map[common.Phase]solana.Signature, error)
}

type linearSequencer struct {
	log       *logrus.Entry
	submitter Submitter
	runs      run.Store
}

// NewLinearSequencer returns a Sequencer that submits steps one at a time,
// waiting for each to confirm before the next. The first failure ends the run
// without retries. Every step's outcome is recorded in runs.
func NewLinearSequencer(submitter Submitter, runs run.Store) Sequencer {
	return &linearSequencer{
		log:       logrus.StandardLogger().WithField("type", "vault/driver/linear_sequencer"),
		submitter: submitter,
		runs:      runs,
	}
}

// Run implements Sequencer.Run
func (s *linearSequencer) Run(ctx context.Context, runId string, steps ...*Step) (map[common.Phase]solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, sequencerMetricsStructName, "Run")
	tracer.AddAttribute("run_id", runId)
	defer tracer.End()

	signatures, err := s.run(ctx, runId, steps...)
	tracer.OnError(err)
	return signatures, err
}

func (s *linearSequencer) run(ctx context.Context, runId string, steps ...*Step) (map[common.Phase]solana.Signature, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	// Checked upfront so that a malformed run submits nothing
	var last common.Phase
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return nil, err
		}
		if step.Phase <= last {
			return nil, errors.Wrapf(ErrPhaseOutOfOrder, "%s after %s", step.Phase, last)
		}
		last = step.Phase
	}

	signatures := make(map[common.Phase]solana.Signature)
	for _, step := range steps {
		sig, err := s.runStep(ctx, runId, step)
		if err != nil {
			return signatures, errors.Wrapf(err, "%s phase failed", step.Phase)
		}
		signatures[step.Phase] = sig
	}
	return signatures, nil
}

func (s *linearSequencer) runStep(ctx context.Context, runId string, step *Step) (solana.Signature, error) {
	log := s.log.WithFields(logrus.Fields{
		"method": "runStep",
		"run_id": runId,
		"phase":  step.Phase.String(),
	})

	record := &run.Record{
		RunId:   runId,
		Phase:   step.Phase,
		Program: base58.Encode(step.Instruction.Program),
		Payer:   step.Signers[0].String(),
		State:   run.StateSubmitted,
	}
	if err := s.runs.Save(ctx, record); err != nil {
		return solana.Signature{}, errors.Wrap(err, "error saving run record")
	}

	start := time.Now()
	sig, err := s.submitter.Submit(ctx, step.Signers, step.Instruction)
	recordPhaseDuration(ctx, step.Phase, time.Since(start))

	if sig != (solana.Signature{}) {
		record.Signature = sig.String()
		log = log.WithField("signature", record.Signature)
	}

	if err != nil {
		recordPhaseFailure(ctx, step.Phase)
		log.WithError(err).Warn("phase failed")

		record.State = run.StateFailed
		record.Error = err.Error()
		if saveErr := s.runs.Save(ctx, record); saveErr != nil {
			log.WithError(saveErr).Warn("failure updating run record")
		}
		return sig, err
	}

	log.WithField("confirm", "solana confirm -v "+record.Signature).Info("phase confirmed")

	// The phase is already confirmed on chain, so a bookkeeping failure
	// doesn't fail the run
	record.State = run.StateConfirmed
	if err := s.runs.Save(ctx, record); err != nil {
		log.WithError(err).Warn("failure updating run record")
	}

	return sig, nil
}
