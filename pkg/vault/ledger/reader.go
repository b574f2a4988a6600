package ledger

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/code-payments/vault-driver/pkg/cache"
	"github.com/code-payments/vault-driver/pkg/metrics"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/vault/common"
)

const (
	readerMetricsStructName = "ledger.reader"

	rentCacheBudget = 64
)

// Reader provides read only views of ledger state for actors and vault
// accounts.
type Reader struct {
	client     solana.Client
	commitment solana.Commitment

	// Rent exempt minimums keyed by data size
	rentCache cache.Cache
}

func NewReader(client solana.Client, commitment solana.Commitment) *Reader {
	return &Reader{
		client:     client,
		commitment: commitment,
		rentCache:  cache.New(rentCacheBudget),
	}
}

// Balance returns the account's current lamport balance.
func (r *Reader) Balance(ctx context.Context, account *common.Account) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "Balance")
	defer tracer.End()

	balance, err := r.client.GetBalance(account.PublicKey().ToBytes())
	if err != nil {
		tracer.OnError(err)
		return 0, errors.Wrap(err, "error getting balance")
	}
	return balance, nil
}

// AccountInfo returns the account's on chain state. solana.ErrNoAccountInfo is
// returned when the account doesn't exist.
func (r *Reader) AccountInfo(ctx context.Context, account *common.Account) (*solana.AccountInfo, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "AccountInfo")
	defer tracer.End()

	info, err := r.client.GetAccountInfo(account.PublicKey().ToBytes(), r.commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, err
	} else if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting account info")
	}
	return &info, nil
}

// RentExemptMinimum returns the lamports an account of dataSize bytes needs to
// be exempt from rent. Results are cached per data size.
func (r *Reader) RentExemptMinimum(ctx context.Context, dataSize uint64) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "RentExemptMinimum")
	defer tracer.End()

	key := strconv.FormatUint(dataSize, 10)
	if cached, ok := r.rentCache.Retrieve(key); ok {
		return cached.(uint64), nil
	}

	lamports, err := r.client.GetMinimumBalanceForRentExemption(dataSize)
	if err != nil {
		tracer.OnError(err)
		return 0, errors.Wrap(err, "error getting rent exempt minimum")
	}

	// Concurrent lookups for the same size may race to insert
	_ = r.rentCache.Insert(key, lamports, 1)

	return lamports, nil
}
