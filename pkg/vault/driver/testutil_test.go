package driver

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

type submission struct {
	signers     []*common.Account
	instruction solana.Instruction
	signature   solana.Signature
}

type fakeSubmitter struct {
	mu          sync.Mutex
	submissions []*submission
	failAt      int // 1-based submission index to fail, 0 to never fail
}

func (s *fakeSubmitter) Submit(_ context.Context, signers []*common.Account, instructions ...solana.Instruction) (solana.Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sig solana.Signature
	if len(instructions) != 1 {
		return sig, errors.New("expected a single instruction per transaction")
	}
	ixn := instructions[0]

	for _, required := range ixn.SignerAccounts() {
		var found bool
		for _, signer := range signers {
			if bytes.Equal(required, signer.PublicKey().ToBytes()) {
				found = true
				break
			}
		}
		if !found {
			return sig, errors.New("missing signer")
		}
	}

	copy(sig[:], ed25519.Sign(signers[0].PrivateKey().ToBytes(), ixn.Data))

	s.submissions = append(s.submissions, &submission{
		signers:     signers,
		instruction: ixn,
		signature:   sig,
	})

	if s.failAt == len(s.submissions) {
		return sig, solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	}
	return sig, nil
}

type funding struct {
	account  *common.Account
	lamports uint64
}

type fakeFunder struct {
	mu      sync.Mutex
	funded  []*funding
	fundErr error
}

func (f *fakeFunder) Fund(_ context.Context, account *common.Account, lamports uint64) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fundErr != nil {
		return solana.Signature{}, f.fundErr
	}

	f.funded = append(f.funded, &funding{
		account:  account,
		lamports: lamports,
	})

	var sig solana.Signature
	copy(sig[:], account.PublicKey().ToBytes())
	return sig, nil
}
