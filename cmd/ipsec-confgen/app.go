package main

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ipsec-confgen/internal/artifact"
	"ipsec-confgen/internal/config"
	"ipsec-confgen/internal/database"
	"ipsec-confgen/internal/diaglog"
	"ipsec-confgen/internal/generator"
	"ipsec-confgen/internal/presets"
	"ipsec-confgen/internal/secret"
	"ipsec-confgen/internal/templates"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg     *config.Config
	logs    *diaglog.Manager
	logger  *log.Logger
	db      *sql.DB
	index   *artifact.Index
	writer  *artifact.Writer
	service *generator.Service
}

// loadApp reads configuration and wires the pipeline. Storage (key store,
// index and writer) is only opened when withStorage is set so that plain
// generation never touches the keyring or the disk.
func loadApp(opts *rootOptions, withStorage bool) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logs := diaglog.New(cfg.Log.File)
	if err := logs.Configure(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	a := &app{cfg: cfg, logs: logs, logger: logs.Logger()}

	registry, err := templates.NewRegistry()
	if err != nil {
		a.close()
		return nil, err
	}
	catalog, err := presets.Load(cfg.PresetsFile)
	if err != nil {
		a.close()
		return nil, err
	}

	if withStorage {
		if err := a.openStorage(); err != nil {
			a.close()
			return nil, err
		}
	}

	a.service, err = generator.NewService(registry, a.writer, catalog, a.logger)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStorage() error {
	secrets, err := secret.Open(keyStore(a.cfg.Key))
	if err != nil {
		return fmt.Errorf("open psk encryption key: %w", err)
	}

	if a.cfg.IndexPath != "" {
		db, err := database.Open(a.cfg.IndexPath)
		if err != nil {
			return fmt.Errorf("open artifact index: %w", err)
		}
		a.db = db
		pruned, err := database.Cleanup(db)
		if err != nil {
			a.logger.WithError(err).Warn("Failed to prune artifact save history")
		} else if pruned > 0 {
			a.logger.WithField("rows", pruned).Debug("Pruned artifact save history")
		}
		a.index, err = artifact.NewIndex(db)
		if err != nil {
			return err
		}
	}

	a.writer, err = artifact.NewWriter(a.cfg.StorageDir, secrets, a.index)
	return err
}

func keyStore(cfg config.KeyConfig) secret.KeyStore {
	if cfg.Backend == config.KeyBackendKeyring {
		return secret.NewKeyringStore(cfg.Service, cfg.User)
	}
	return secret.NewFileStore(cfg.Path)
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close artifact index")
		}
		a.db = nil
	}
	_ = a.logs.Close()
}
