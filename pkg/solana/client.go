package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/vault-driver/pkg/retry"
	"github.com/code-payments/vault-driver/pkg/retry/backoff"
)

const (
	// PollRate is roughly twice the slot rate of ~400ms.
	PollRate = 200 * time.Millisecond

	// Statuses are polled for ~32 slots before giving up
	sigStatusPollLimit = 64

	blockhashTTL = 2 * time.Second

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005
	rpcRateLimitedCode   = 429
	rpcInvalidParamCode  = -32602
)

// Commitment is the level of finality a request observes or waits for.
type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// CommitmentFromString parses a commitment level name.
func CommitmentFromString(value string) (Commitment, error) {
	for _, c := range []Commitment{CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized} {
		if c.Commitment == value {
			return c, nil
		}
	}
	return Commitment{}, errors.Errorf("unknown commitment: %s", value)
}

var (
	ErrNoAccountInfo     = errors.New("no account info")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrNoBalance         = errors.New("no balance")
)

// AccountInfo is an account's state as stored on the ledger.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Nil once the transaction has been rooted
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	if s.Finalized() || s.ConfirmationStatus == confirmationStatusConfirmed {
		return true
	}
	return *s.Confirmations >= 1
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Reached reports whether the status satisfies commitment.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentConfirmed:
		return s.Confirmed()
	case CommitmentFinalized:
		return s.Finalized()
	default:
		return true
	}
}

// Client is the subset of the Solana JSON RPC API needed to drive programs on
// a cluster.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetLatestBlockhash() (Blockhash, error)
	GetSignatureStatus(Signature, Commitment) (*SignatureStatus, error)
	GetSignatureStatuses([]Signature) ([]*SignatureStatus, error)
	RequestAirdrop(ed25519.PublicKey, uint64, Commitment) (Signature, error)
	SubmitTransaction(Transaction, Commitment) (Signature, error)
}

var (
	errRateLimited             = errors.New("rate limited")
	errServiceError            = errors.New("service error")
	errConfirmationsNotReached = errors.New("confirmations not reached")
)

// contextual wraps the value of RPC methods that report the slot they were
// evaluated at.
type contextual[T any] struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

type client struct {
	log     *logrus.Entry
	rpc     jsonrpc.RPCClient
	retrier retry.Retrier

	blockMu       sync.RWMutex
	blockhash     Blockhash
	blockhashTime time.Time
}

// New returns a client using the specified endpoint.
func New(endpoint string) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log: logrus.StandardLogger().WithField("type", "solana/client"),
		rpc: jsonrpc.NewClientWithOpts(endpoint, opts),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
	}
}

// call invokes method, retrying rate limited and unhealthy node responses.
// Any other RPC error is returned as a *jsonrpc.RPCError.
func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		err := c.rpc.CallFor(out, method, params...)

		rpcErr, ok := err.(*jsonrpc.RPCError)
		switch {
		case !ok:
			return err
		case rpcErr.Code == rpcRateLimitedCode:
			c.log.WithField("method", method).Warn("rate limited")
			return errRateLimited
		case rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode:
			return errServiceError
		default:
			return rpcErr
		}
	})
	return err
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (uint64, error) {
	var lamports uint64
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrap(err, "getMinimumBalanceForRentExemption() failed")
	}
	return lamports, nil
}

// GetLatestBlockhash returns a recent blockhash. Hashes are reused for a
// jittered window around blockhashTTL.
func (c *client) GetLatestBlockhash() (Blockhash, error) {
	ttl := time.Duration(float64(blockhashTTL) * (0.8 + 0.4*rand.Float64()))

	c.blockMu.RLock()
	hash, fetched := c.blockhash, c.blockhashTime
	c.blockMu.RUnlock()

	if hash != (Blockhash{}) && time.Since(fetched) < ttl {
		return hash, nil
	}

	var resp contextual[struct {
		Blockhash string `json:"blockhash"`
	}]
	if err := c.call(&resp, "getLatestBlockhash"); err != nil {
		return hash, errors.Wrap(err, "getLatestBlockhash() failed")
	}

	decoded, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 blockhash")
	}
	if len(decoded) != len(hash) {
		return hash, errors.Errorf("invalid blockhash length: %d", len(decoded))
	}
	copy(hash[:], decoded)

	c.blockMu.Lock()
	c.blockhash = hash
	c.blockhashTime = time.Now()
	c.blockMu.Unlock()

	return hash, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp contextual[uint64]
	err := c.call(&resp, "getBalance", base58.Encode(account), CommitmentProcessed)
	if rpcErr, ok := err.(*jsonrpc.RPCError); ok && rpcErr.Code == rpcInvalidParamCode {
		return 0, ErrNoBalance
	} else if err != nil {
		return 0, errors.Wrap(err, "getBalance() failed")
	}
	return resp.Value, nil
}

// SubmitTransaction sends a signed transaction with preflight checks at the
// requested commitment. A failed preflight simulation is returned as a
// *TransactionError.
func (c *client) SubmitTransaction(txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signatures[0]

	config := struct {
		Encoding            string `json:"encoding"`
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
	}{
		Encoding:            "base58",
		PreflightCommitment: commitment.Commitment,
	}

	var returned string
	err := c.call(&returned, "sendTransaction", txn.ToBase58(), config)
	if rpcErr, ok := err.(*jsonrpc.RPCError); ok {
		if txErr, parseErr := ParseRPCError(rpcErr); parseErr == nil && txErr != nil {
			return sig, txErr
		}
		return sig, errors.Wrap(err, "sendTransaction() rejected")
	} else if err != nil {
		return sig, errors.Wrap(err, "sendTransaction() failed")
	}

	if returned != "" && returned != sig.String() {
		c.log.WithFields(logrus.Fields{
			"method":   "SubmitTransaction",
			"expected": sig.String(),
			"actual":   returned,
		}).Warn("node returned an unexpected signature")
	}

	return sig, nil
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	var resp contextual[*struct {
		Lamports   uint64   `json:"lamports"`
		Owner      string   `json:"owner"`
		Data       []string `json:"data"`
		Executable bool     `json:"executable"`
	}]

	config := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	if err := c.call(&resp, "getAccountInfo", base58.Encode(account), config); err != nil {
		return AccountInfo{}, errors.Wrap(err, "getAccountInfo() failed")
	}

	value := resp.Value
	if value == nil {
		return AccountInfo{}, ErrNoAccountInfo
	}

	owner, err := base58.Decode(value.Owner)
	if err != nil {
		return AccountInfo{}, errors.Wrap(err, "invalid base58 owner")
	}

	// Data is returned as a [payload, encoding] pair
	if len(value.Data) == 0 {
		return AccountInfo{}, errors.New("missing account data")
	}
	data, err := base64.StdEncoding.DecodeString(value.Data[0])
	if err != nil {
		return AccountInfo{}, errors.Wrap(err, "invalid base64 account data")
	}

	return AccountInfo{
		Data:       data,
		Owner:      owner,
		Lamports:   value.Lamports,
		Executable: value.Executable,
	}, nil
}

func (c *client) RequestAirdrop(account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	var encoded string
	if err := c.call(&encoded, "requestAirdrop", base58.Encode(account), lamports, commitment); err != nil {
		return Signature{}, errors.Wrap(err, "requestAirdrop() failed")
	}

	sig, err := SignatureFromBase58(encoded)
	if err != nil {
		return Signature{}, errors.Wrap(err, "invalid airdrop signature")
	}
	if sig == (Signature{}) {
		return Signature{}, errors.New("empty airdrop signature")
	}
	return sig, nil
}

// GetSignatureStatus polls until the signature reaches commitment. A
// transaction that landed with an error is returned together with that error.
func (c *client) GetSignatureStatus(sig Signature, commitment Commitment) (*SignatureStatus, error) {
	var status *SignatureStatus
	_, err := retry.Retry(
		func() error {
			statuses, err := c.GetSignatureStatuses([]Signature{sig})
			if err != nil {
				return err
			}

			status = statuses[0]
			switch {
			case status == nil:
				return ErrSignatureNotFound
			case status.ErrorResult != nil:
				return status.ErrorResult
			case !status.Reached(commitment):
				return errConfirmationsNotReached
			}
			return nil
		},
		retry.RetriableErrors(ErrSignatureNotFound, errConfirmationsNotReached),
		retry.Limit(sigStatusPollLimit),
		retry.Backoff(backoff.Constant(PollRate), PollRate),
	)
	return status, err
}

// GetSignatureStatuses returns the status of each signature, in order. Unknown
// signatures have a nil status.
func (c *client) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	encoded := make([]string, len(sigs))
	for i, sig := range sigs {
		encoded[i] = sig.String()
	}

	config := struct {
		SearchTransactionHistory bool `json:"searchTransactionHistory"`
	}{
		SearchTransactionHistory: true,
	}

	var resp contextual[[]*struct {
		Slot               uint64          `json:"slot"`
		Confirmations      *int            `json:"confirmations"`
		ConfirmationStatus string          `json:"confirmationStatus"`
		Err                json.RawMessage `json:"err"`
	}]
	if err := c.call(&resp, "getSignatureStatuses", encoded, config); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		status := &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		if len(v.Err) > 0 {
			var raw interface{}
			err := json.Unmarshal(v.Err, &raw)
			if err != nil {
				return nil, errors.Wrap(err, "invalid transaction error")
			}

			status.ErrorResult, err = ParseTransactionError(raw)
			if err != nil {
				return nil, errors.Wrap(err, "invalid transaction error")
			}
		}

		statuses[i] = status
	}

	return statuses, nil
}
