package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/code-payments/vault-driver/pkg/database/postgres"
	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
)

const (
	tableName = "vaultdriver__core_phaserun"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	RunId string `db:"run_id"`
	Phase int    `db:"phase"`

	Program string `db:"program"`
	Payer   string `db:"payer"`

	Signature string `db:"signature"`

	State int    `db:"state"`
	Error string `db:"error"`

	CreatedAt time.Time `db:"created_at"`
}

func toModel(obj *run.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		RunId: obj.RunId,
		Phase: int(obj.Phase),

		Program: obj.Program,
		Payer:   obj.Payer,

		Signature: obj.Signature,

		State: int(obj.State),
		Error: obj.Error,

		CreatedAt: obj.CreatedAt,
	}, nil
}

func fromModel(obj *model) *run.Record {
	return &run.Record{
		Id: uint64(obj.Id.Int64),

		RunId: obj.RunId,
		Phase: common.Phase(obj.Phase),

		Program: obj.Program,
		Payer:   obj.Payer,

		Signature: obj.Signature,

		State: run.State(obj.State),
		Error: obj.Error,

		CreatedAt: obj.CreatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(run_id, phase, program, payer, signature, state, error, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)

			ON CONFLICT(run_id, phase)
			DO UPDATE
				SET signature = $5, state = $6, error = $7
				WHERE ` + tableName + `.run_id = $1 AND ` + tableName + `.phase = $2

			RETURNING id, run_id, phase, program, payer, signature, state, error, created_at`

		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}

		return tx.QueryRowxContext(
			ctx,
			query,
			m.RunId,
			m.Phase,
			m.Program,
			m.Payer,
			m.Signature,
			m.State,
			m.Error,
			m.CreatedAt,
		).StructScan(m)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, runId string, phase common.Phase) (*model, error) {
	var res model

	query := `SELECT id, run_id, phase, program, payer, signature, state, error, created_at FROM ` + tableName + `
		WHERE run_id = $1 AND phase = $2
	`

	err := db.GetContext(ctx, &res, query, runId, int(phase))
	if err != nil {
		return nil, pgutil.CheckNoRows(err, run.ErrRunNotFound)
	}
	return &res, nil
}

func dbGetAllByRun(ctx context.Context, db *sqlx.DB, runId string) ([]*model, error) {
	var res []*model

	query := `SELECT id, run_id, phase, program, payer, signature, state, error, created_at FROM ` + tableName + `
		WHERE run_id = $1
		ORDER BY phase ASC
	`

	err := db.SelectContext(ctx, &res, query, runId)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, run.ErrRunNotFound)
	}

	if len(res) == 0 {
		return nil, run.ErrRunNotFound
	}
	return res, nil
}
