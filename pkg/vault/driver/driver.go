package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-driver/pkg/metrics"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

const (
	driverMetricsStructName = "driver"
)

var (
	ErrMissingProgram = errors.New("program id is not configured")

	// ErrEscrowDerivationChanged is returned when re-deriving the user's escrow
	// at the end of a run doesn't match the derivation used by the run.
	ErrEscrowDerivationChanged = errors.New("escrow derivation is not stable")
)

// Funder funds an account with lamports and blocks until the funds are
// confirmed.
type Funder interface {
	Fund(ctx context.Context, account *common.Account, lamports uint64) (solana.Signature, error)
}

// Result is the outcome of a run.
type Result struct {
	RunId   string
	Program *common.Account
	Actors  *Actors

	// Signatures of the confirmed phases
	Signatures map[common.Phase]solana.Signature
}

// Driver exercises the vault protocol end to end: fresh actors are created
// and funded, and each protocol phase is handed to the Sequencer.
type Driver struct {
	log       *logrus.Entry
	conf      *conf
	funder    Funder
	sequencer Sequencer
}

func New(funder Funder, sequencer Sequencer, configProvider ConfigProvider) *Driver {
	return &Driver{
		log:       logrus.StandardLogger().WithField("type", "vault/driver"),
		conf:      configProvider(),
		funder:    funder,
		sequencer: sequencer,
	}
}

// Run executes a single run. Any failure ends the run, and on chain state
// from phases confirmed before the failure is left as is.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	tracer := metrics.TraceMethodCall(ctx, driverMetricsStructName, "Run")
	defer tracer.End()

	start := time.Now()

	result := &Result{
		RunId: uuid.New().String(),
	}
	tracer.AddAttribute("run_id", result.RunId)

	err := d.run(ctx, result)
	tracer.OnError(err)
	recordRunEvent(ctx, result, time.Since(start), err)
	return result, err
}

func (d *Driver) run(ctx context.Context, result *Result) error {
	log := d.log.WithFields(logrus.Fields{
		"method": "Run",
		"run_id": result.RunId,
	})

	programId := d.conf.programId.Get(ctx)
	if len(programId) == 0 {
		return ErrMissingProgram
	}
	program, err := common.NewAccountFromPublicKeyString(programId)
	if err != nil {
		return errors.Wrap(err, "invalid program id")
	}
	result.Program = program

	namespace := d.conf.escrowNamespace.Get(ctx)

	depositLamports := d.conf.depositLamports.Get(ctx)
	if depositLamports == 0 {
		return errors.New("deposit amount must be positive")
	}

	actors, err := NewActors(program, namespace)
	if err != nil {
		return err
	}
	result.Actors = actors

	log = log.WithFields(logrus.Fields{
		"program":     program.String(),
		"operator":    actors.Operator.String(),
		"user":        actors.User.String(),
		"vault":       actors.Vault.String(),
		"escrow":      actors.Escrow.Escrow.String(),
		"escrow_bump": actors.Escrow.EscrowBump,
	})
	log.Info("starting run")

	if !d.conf.skipFunding.Get(ctx) {
		lamports := d.conf.airdropLamports.Get(ctx)
		for _, actor := range []*common.Account{actors.Operator, actors.User} {
			sig, err := d.funder.Fund(ctx, actor, lamports)
			if err != nil {
				return errors.Wrapf(err, "error funding %s", actor.String())
			}

			log.WithFields(logrus.Fields{
				"account":   actor.String(),
				"signature": sig.String(),
			}).Debug("actor funded")
		}
	}

	steps, err := BuildSteps(program, actors, depositLamports, d.conf.transferLamports.Get(ctx))
	if err != nil {
		return err
	}

	signatures, err := d.sequencer.Run(ctx, result.RunId, steps...)
	result.Signatures = signatures
	if err != nil {
		log.WithError(err).Warn("run failed")
		return err
	}

	rederived, err := actors.User.GetEscrowAccounts(program, namespace)
	if err != nil {
		return errors.Wrap(err, "error re-deriving escrow address")
	}
	if !rederived.Equals(actors.Escrow) {
		return ErrEscrowDerivationChanged
	}

	log.Info("run completed")
	return nil
}
