package main

import (
	"context"
	"database/sql"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/vault-driver/pkg/app"
	pg "github.com/code-payments/vault-driver/pkg/database/postgres"
	"github.com/code-payments/vault-driver/pkg/rate"
	"github.com/code-payments/vault-driver/pkg/solana"
	"github.com/code-payments/vault-driver/pkg/solana/nativevault"
	"github.com/code-payments/vault-driver/pkg/vault/common"
	"github.com/code-payments/vault-driver/pkg/vault/data/run"
	run_memory_client "github.com/code-payments/vault-driver/pkg/vault/data/run/memory"
	run_postgres_client "github.com/code-payments/vault-driver/pkg/vault/data/run/postgres"
	"github.com/code-payments/vault-driver/pkg/vault/driver"
	"github.com/code-payments/vault-driver/pkg/vault/ledger"
)

type vaultDriverApp struct {
	log *logrus.Entry

	db     *sql.DB
	reader *ledger.Reader
	driver *driver.Driver
}

// Init implements app.Job.Init
func (a *vaultDriverApp) Init(config *app.BaseConfig) error {
	a.log = logrus.StandardLogger().WithField("type", "vault/driver/app")

	commitment, err := solana.CommitmentFromString(config.Commitment)
	if err != nil {
		return errors.Wrap(err, "invalid commitment")
	}

	runs, err := a.newRunStore(config)
	if err != nil {
		return err
	}

	var limiter rate.Limiter = &rate.NoLimiter{}
	if config.AirdropRateLimit > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(config.AirdropRateLimit))
	}

	client := solana.New(config.SolanaEndpoint)
	a.reader = ledger.NewReader(client, commitment)
	a.driver = driver.New(
		ledger.NewFunder(client, commitment, limiter),
		driver.NewLinearSequencer(ledger.NewSubmitter(client, commitment), runs),
		driver.WithEnvConfigs(),
	)

	a.log.WithFields(logrus.Fields{
		"endpoint":   config.SolanaEndpoint,
		"commitment": config.Commitment,
	}).Info("vault driver initialized")
	return nil
}

func (a *vaultDriverApp) newRunStore(config *app.BaseConfig) (run.Store, error) {
	if len(config.DatabaseHost) == 0 {
		return run_memory_client.New(), nil
	}

	db, err := pg.Open(&pg.Config{
		User:               config.DatabaseUser,
		Host:               config.DatabaseHost,
		Password:           config.DatabasePassword,
		Port:               config.DatabasePort,
		DbName:             config.DatabaseName,
		MaxOpenConnections: config.DatabaseMaxOpenConnections,
		MaxIdleConnections: config.DatabaseMaxIdleConnections,
		UseAwsIam:          config.DatabaseUseAwsIam,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error opening run database")
	}

	a.db = db
	return run_postgres_client.New(db), nil
}

// Run implements app.Job.Run
func (a *vaultDriverApp) Run(ctx context.Context) error {
	result, err := a.driver.Run(ctx)
	if err != nil {
		return err
	}

	a.report(ctx, result)
	return nil
}

// report logs the ledger state left behind by a successful run. Lookup
// failures are logged and never fail the run.
func (a *vaultDriverApp) report(ctx context.Context, result *driver.Result) {
	log := a.log.WithFields(logrus.Fields{
		"method": "report",
		"run":    result.RunId,
	})

	for name, account := range map[string]*common.Account{
		"operator": result.Actors.Operator,
		"user":     result.Actors.User,
		"escrow":   result.Actors.Escrow.Escrow,
	} {
		balance, err := a.reader.Balance(ctx, account)
		if err != nil {
			log.WithError(err).WithField("account", name).Warn("failure getting balance")
			continue
		}

		log.WithFields(logrus.Fields{
			"account": name,
			"address": account.PublicKey().ToBase58(),
			"balance": balance,
		}).Info("final balance")
	}

	info, err := a.reader.AccountInfo(ctx, result.Actors.Vault)
	switch err {
	case nil:
		log.WithFields(logrus.Fields{
			"vault":     result.Actors.Vault.PublicKey().ToBase58(),
			"owner":     base58.Encode(info.Owner),
			"data_size": len(info.Data),
			"lamports":  info.Lamports,
		}).Info("vault account state")
	case solana.ErrNoAccountInfo:
		log.Warn("vault account not found after run")
	default:
		log.WithError(err).Warn("failure getting vault account info")
	}

	for name, size := range map[string]int{
		"vault":  nativevault.VaultAccountSize,
		"escrow": nativevault.EscrowAccountSize,
	} {
		minimum, err := a.reader.RentExemptMinimum(ctx, uint64(size))
		if err != nil {
			log.WithError(err).WithField("account", name).Warn("failure getting rent exempt minimum")
			continue
		}

		log.WithFields(logrus.Fields{
			"account": name,
			"size":    size,
			"minimum": minimum,
		}).Debug("rent exempt minimum")
	}
}

// Stop implements app.Job.Stop
func (a *vaultDriverApp) Stop() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}
