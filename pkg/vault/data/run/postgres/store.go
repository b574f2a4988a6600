package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres run.Store
func New(db *sql.DB) run.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Save implements run.Store.Save
func (s *store) Save(ctx context.Context, record *run.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	err = model.dbSave(ctx, s.db)
	if err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// Get implements run.Store.Get
func (s *store) Get(ctx context.Context, runId string, phase common.Phase) (*run.Record, error) {
	model, err := dbGet(ctx, s.db, runId, phase)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetAllByRun implements run.Store.GetAllByRun
func (s *store) GetAllByRun(ctx context.Context, runId string) ([]*run.Record, error) {
	models, err := dbGetAllByRun(ctx, s.db, runId)
	if err != nil {
		return nil, err
	}

	res := make([]*run.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}
