package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-driver/pkg/metrics"
	"github.com/code-payments/vault-driver/pkg/rate"
	"github.com/code-payments/vault-driver/pkg/retry"
	"github.com/code-payments/vault-driver/pkg/retry/backoff"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

const (
	funderMetricsStructName = "ledger.funder"

	maxAirdropAttempts = 5
	airdropBaseDelay   = 500 * time.Millisecond
	airdropMaxDelay    = 8 * time.Second
)

// Funder funds accounts through the cluster faucet.
type Funder struct {
	log        *logrus.Entry
	client     solana.Client
	commitment solana.Commitment
	limiter    rate.Limiter
	baseDelay  time.Duration
}

// NewFunder returns a Funder whose airdrop requests, retries included, are
// paced per recipient by limiter.
func NewFunder(client solana.Client, commitment solana.Commitment, limiter rate.Limiter) *Funder {
	return &Funder{
		log:        logrus.StandardLogger().WithField("type", "vault/ledger/funder"),
		client:     client,
		commitment: commitment,
		limiter:    limiter,
		baseDelay:  airdropBaseDelay,
	}
}

// Fund airdrops lamports to account and waits for the airdrop to reach the
// configured commitment. Faucets are commonly rate limited, so requests are
// retried with backoff until ctx is done.
func (f *Funder) Fund(ctx context.Context, account *common.Account, lamports uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, funderMetricsStructName, "Fund")
	defer tracer.End()

	log := f.log.WithFields(logrus.Fields{
		"method":   "Fund",
		"account":  account.String(),
		"lamports": lamports,
	})

	var sig solana.Signature
	_, err := retry.Retry(
		func() (err error) {
			if err := f.limiter.Wait(ctx, account.PublicKey().ToBase58()); err != nil {
				return err
			}

			sig, err = f.client.RequestAirdrop(account.PublicKey().ToBytes(), lamports, f.commitment)
			if err != nil {
				log.WithError(err).Debug("airdrop request failed")
			}
			return err
		},
		retry.Context(ctx),
		retry.Limit(maxAirdropAttempts),
		retry.BackoffWithJitter(backoff.BinaryExponential(f.baseDelay), airdropMaxDelay, 0.1),
	)
	if err != nil {
		tracer.OnError(err)
		return sig, errors.Wrap(err, "error requesting airdrop")
	}

	log = log.WithField("signature", sig.String())

	if _, err := f.client.GetSignatureStatus(sig, f.commitment); err != nil {
		tracer.OnError(err)
		log.WithError(err).Warn("airdrop failed to confirm")
		return sig, errors.Wrap(err, "error confirming airdrop")
	}

	log.Debug("airdrop confirmed")
	return sig, nil
}
