package main

import (
	"github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/custody-daemon/internal/config"
	"github.com/tdex-network/custody-daemon/internal/core/application/account"
	"github.com/tdex-network/custody-daemon/internal/core/application/escrow"
	"github.com/tdex-network/custody-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/custody-daemon/internal/core/application/vault"
	"github.com/tdex-network/custody-daemon/internal/core/ports"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/ledger"
	pubsubinfra "github.com/tdex-network/custody-daemon/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/custody-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/tdex-network/custody-daemon/internal/interfaces"
	httpinterface "github.com/tdex-network/custody-daemon/internal/interfaces/http"
)

type daemon struct {
	repoManager ports.RepoManager
	pubsubSvc   *pubsub.Service
	httpSvc     interfaces.Service
}

func newDaemon() (*daemon, error) {
	repoManager, err := newRepoManager()
	if err != nil {
		return nil, err
	}
	d := &daemon{repoManager: repoManager}

	if err := d.init(); err != nil {
		d.stop()
		return nil, err
	}
	return d, nil
}

func (d *daemon) init() error {
	l, err := ledger.NewService(d.repoManager, config.GetRent())
	if err != nil {
		return err
	}

	ps, err := pubsubinfra.NewService(
		config.GetDbDir(),
		config.GetWebhookTimeout(),
		config.GetInt(config.WebhookRateLimitKey),
		badgerLogger(),
	)
	if err != nil {
		return err
	}
	if d.pubsubSvc, err = pubsub.NewService(ps); err != nil {
		return err
	}

	vaultSvc, err := vault.NewService(
		d.repoManager, l, d.pubsubSvc, config.GetVaultProgramID(),
	)
	if err != nil {
		return err
	}
	escrowSvc, err := escrow.NewService(
		d.repoManager, l, d.pubsubSvc, config.GetEscrowProgramID(),
	)
	if err != nil {
		return err
	}
	accountSvc, err := account.NewService(
		d.repoManager, l, config.GetBool(config.EnableFaucetKey),
	)
	if err != nil {
		return err
	}

	opts := httpinterface.ServiceOpts{
		Port:         config.GetInt(config.HTTPListeningPortKey),
		MaxClockSkew: config.GetAuthMaxClockSkew(),
		VaultSvc:     vaultSvc,
		EscrowSvc:    escrowSvc,
		AccountSvc:   accountSvc,
		PubSubSvc:    d.pubsubSvc,
	}
	if operator, ok := config.GetOperator(); ok {
		opts.Operator = &operator
	}
	d.httpSvc, err = httpinterface.NewService(opts)
	return err
}

func (d *daemon) start() error {
	if config.GetBool(config.EnableFaucetKey) {
		log.Warn("faucet is enabled, anyone can mint tokens and lamports")
	}
	return d.httpSvc.Start()
}

func (d *daemon) stop() {
	if d.httpSvc != nil {
		d.httpSvc.Stop()
	}
	if d.pubsubSvc != nil {
		d.pubsubSvc.Close()
		log.Debug("closed pubsub service")
	}
	d.repoManager.Close()
	log.Debug("closed connection with db")
}

func newRepoManager() (ports.RepoManager, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		log.Info("using inmemory db, state is lost on shutdown")
		return inmemory.NewRepoManager(), nil
	}
	return dbbadger.NewRepoManager(config.GetDbDir(), badgerLogger())
}

// badgerLogger returns nil, which mutes badger, unless in debug mode.
func badgerLogger() badger.Logger {
	if log.GetLevel() < log.DebugLevel {
		return nil
	}
	return log.StandardLogger()
}
