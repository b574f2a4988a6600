package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-driver/pkg/metrics"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

const (
	submitterMetricsStructName = "ledger.submitter"
)

var (
	// ErrMissingSigner is returned when an instruction requires a signature
	// from an account whose private key was not provided.
	ErrMissingSigner = errors.New("missing signer for required account")

	ErrNoPayer = errors.New("a payer is required")
)

// Submitter compiles, signs and submits instructions as a single transaction,
// waiting until it reaches the configured commitment.
type Submitter struct {
	log        *logrus.Entry
	client     solana.Client
	commitment solana.Commitment
}

func NewSubmitter(client solana.Client, commitment solana.Commitment) *Submitter {
	return &Submitter{
		log:        logrus.StandardLogger().WithField("type", "vault/ledger/submitter"),
		client:     client,
		commitment: commitment,
	}
}

// Submit submits the instructions in a transaction paid for by signers[0].
// Only accounts whose role requires a signature are signed for, so program
// derived addresses flagged as signers are left to their owning program.
//
// When the transaction was submitted but failed to confirm, its signature is
// returned along with the error.
func (s *Submitter) Submit(ctx context.Context, signers []*common.Account, instructions ...solana.Instruction) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, submitterMetricsStructName, "Submit")
	defer tracer.End()

	sig, err := s.submit(ctx, signers, instructions...)
	tracer.OnError(err)
	return sig, err
}

func (s *Submitter) submit(ctx context.Context, signers []*common.Account, instructions ...solana.Instruction) (solana.Signature, error) {
	var sig solana.Signature

	if len(signers) == 0 {
		return sig, ErrNoPayer
	}
	if len(instructions) == 0 {
		return sig, errors.New("at least one instruction is required")
	}

	held := make(map[string]*common.Account)
	for _, signer := range signers {
		if err := signer.Validate(); err != nil {
			return sig, errors.Wrap(err, "invalid signer")
		}
		if !signer.HasPrivateKey() {
			return sig, errors.Wrapf(ErrMissingSigner, "%s has no private key", signer.String())
		}
		held[signer.String()] = signer
	}

	for _, ixn := range instructions {
		for _, required := range ixn.SignerAccounts() {
			if _, ok := held[base58.Encode(required)]; !ok {
				return sig, errors.Wrapf(ErrMissingSigner, "%s", base58.Encode(required))
			}
		}
	}

	payer := signers[0]
	log := s.log.WithFields(logrus.Fields{
		"method": "Submit",
		"payer":  payer.String(),
	})

	bh, err := s.client.GetLatestBlockhash()
	if err != nil {
		return sig, errors.Wrap(err, "error getting latest blockhash")
	}

	txn := solana.NewTransaction(payer.PublicKey().ToBytes(), instructions...)
	txn.SetBlockhash(bh)

	var keys []ed25519.PrivateKey
	for _, expected := range txn.Signers() {
		if signer, ok := held[base58.Encode(expected)]; ok {
			keys = append(keys, signer.PrivateKey().ToBytes())
		}
	}
	if err := txn.Sign(keys...); err != nil {
		return sig, errors.Wrap(err, "error signing transaction")
	}

	copy(sig[:], txn.Signature())
	log = log.WithField("signature", sig.String())

	if ctx.Err() != nil {
		return sig, ctx.Err()
	}

	if _, err := s.client.SubmitTransaction(txn, s.commitment); err != nil {
		log.WithError(err).Warn("transaction was rejected")
		return sig, errors.Wrap(err, "error submitting transaction")
	}

	log.Debug("transaction submitted, waiting for confirmation")

	if _, err := s.client.GetSignatureStatus(sig, s.commitment); err != nil {
		log.WithError(err).Warn("transaction failed to confirm")
		return sig, errors.Wrap(err, "error confirming transaction")
	}

	return sig, nil
}
