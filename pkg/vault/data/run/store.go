package run

import (
	"context"
	"errors"
	"time"

	"github.com/code-payments/vault-driver/pkg/vault/common"
)

var (
	ErrRunNotFound = errors.New("run record not found")
)

type State uint8

const (
	StateUnknown State = iota
	StateSubmitted
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Record captures the outcome of a single phase within a driver run
type Record struct {
	Id uint64

	RunId string
	Phase common.Phase

	Program string
	Payer   string

	// Empty when the phase failed before a transaction was signed
	Signature string

	State State
	Error string

	CreatedAt time.Time
}

type Store interface {
	// Save creates or updates the record for a run id and phase
	Save(ctx context.Context, record *Record) error

	// Get gets the record for a phase within a run
	Get(ctx context.Context, runId string, phase common.Phase) (*Record, error)

	// GetAllByRun gets all records for a run, ordered by phase
	GetAllByRun(ctx context.Context, runId string) ([]*Record, error)
}

func (r *Record) Validate() error {
	if len(r.RunId) == 0 {
		return errors.New("run id is required")
	}

	if !r.Phase.IsValid() {
		return errors.New("phase is invalid")
	}

	if len(r.Program) == 0 {
		return errors.New("program is required")
	}

	if len(r.Payer) == 0 {
		return errors.New("payer is required")
	}

	switch r.State {
	case StateSubmitted:
	case StateConfirmed:
		if len(r.Signature) == 0 {
			return errors.New("signature is required for confirmed phases")
		}
	case StateFailed:
		if len(r.Error) == 0 {
			return errors.New("error is required for failed phases")
		}
	default:
		return errors.New("state is invalid")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		RunId: r.RunId,
		Phase: r.Phase,

		Program: r.Program,
		Payer:   r.Payer,

		Signature: r.Signature,

		State: r.State,
		Error: r.Error,

		CreatedAt: r.CreatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.RunId = r.RunId
	dst.Phase = r.Phase

	dst.Program = r.Program
	dst.Payer = r.Payer

	dst.Signature = r.Signature

	dst.State = r.State
	dst.Error = r.Error

	dst.CreatedAt = r.CreatedAt
}
