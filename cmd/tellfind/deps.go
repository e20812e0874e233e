package main

import (
	"fmt"
	"log/slog"

	"tellfind/internal/blobstore"
	"tellfind/internal/config"
	"tellfind/internal/finds"
	"tellfind/internal/geo"
	"tellfind/internal/models"
	"tellfind/internal/recordstore"
	"tellfind/internal/session"
	"tellfind/internal/sites"
)

// appEnv bundles the stores and registries a command needs.
type appEnv struct {
	cfg      *config.Config
	records  recordstore.Store
	blobs    *blobstore.SQLite
	sessions *session.Manager
	sites    *sites.Registry
}

// withEnv opens the stores, runs fn and closes them again.
func withEnv(cfg *config.Config, fn func(env *appEnv) error) error {
	env, err := openEnv(cfg)
	if err != nil {
		return err
	}
	defer env.close()
	return fn(env)
}

func openEnv(cfg *config.Config) (*appEnv, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	var records recordstore.Store
	var err error
	switch cfg.RecordBackend {
	case config.BackendSQLite:
		records, err = recordstore.OpenSQLite(cfg.RecordsFile())
	default:
		records, err = recordstore.NewJSONFile(cfg.RecordsFile())
	}
	if err != nil {
		return nil, err
	}

	blobs, err := blobstore.OpenSQLite(cfg.MediaDBFile())
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewManager(cfg.SessionFile())
	if err != nil {
		_ = blobs.Close()
		return nil, err
	}
	registry, err := sites.NewRegistry(cfg.SitesFile())
	if err != nil {
		_ = blobs.Close()
		return nil, err
	}

	return &appEnv{
		cfg:      cfg,
		records:  records,
		blobs:    blobs,
		sessions: sessions,
		sites:    registry,
	}, nil
}

func (env *appEnv) close() {
	if closer, ok := env.records.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = env.blobs.Close()
}

// service builds a lifecycle service whose locator is the registered
// position of the user's site, when known.
func (env *appEnv) service(user *models.User) *finds.Service {
	var locator geo.Locator
	if user != nil {
		if site, ok := env.sites.Lookup(user.Site); ok && site.Location != "" {
			locator = geo.Static{Position: site.Location}
		}
	}
	svc := finds.NewService(env.records, env.blobs, locator)
	svc.SetLogger(slog.Default())
	return svc
}

// currentUser returns the logged-in user or an instruction to log in.
func (env *appEnv) currentUser() (*models.User, error) {
	user, err := env.sessions.Current()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not logged in; run: tellfind login")
	}
	return user, nil
}
