// Package app wires the template registry, renderer, exporter and
// submission store from a Config. The server and posterctl share it.
package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/config"
	"github.com/youruser/pledgeapp/internal/directory"
	"github.com/youruser/pledgeapp/internal/export"
	"github.com/youruser/pledgeapp/internal/logging"
	"github.com/youruser/pledgeapp/internal/poster"
	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/submission/sqlite"
	"github.com/youruser/pledgeapp/internal/templates"
)

// App holds the long-lived collaborators.
type App struct {
	Config      config.Config
	Logger      hclog.Logger
	Registry    *templates.Registry
	Loader      *assets.Loader
	Renderer    *poster.Renderer
	Exporter    *export.Exporter
	Store       *sqlite.Store
	Submissions *submission.Service
}

// Templates loads the template families and the organization directory.
func Templates(cfg config.Config) (*templates.Registry, error) {
	families, err := templates.LoadFamilies(cfg.TemplatesFile)
	if err != nil {
		return nil, err
	}
	orgs, err := directory.LoadOrganizations(cfg.OrganizationsFile)
	if err != nil {
		return nil, err
	}
	return templates.NewRegistry(families, orgs)
}

// NewRenderer builds the poster renderer over the asset directory.
func NewRenderer(cfg config.Config, logger hclog.Logger) (*poster.Renderer, *assets.Loader, error) {
	fonts, err := poster.NewFontManager(cfg.FontPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load font: %w", err)
	}
	loader := assets.NewLoader(cfg.AssetsDir, logger)
	return poster.NewRenderer(fonts, loader, logger), loader, nil
}

// OpenStore opens the local submission database.
func OpenStore(ctx context.Context, cfg config.Config) (*sqlite.Store, error) {
	return sqlite.Open(ctx, cfg.DBPath)
}

// New builds the full App. Close releases it.
func New(ctx context.Context, cfg config.Config, logger hclog.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)
	reg, err := Templates(cfg)
	if err != nil {
		return nil, err
	}
	renderer, loader, err := NewRenderer(cfg, logger)
	if err != nil {
		return nil, err
	}

	var refs []string
	for _, d := range reg.ListTemplates() {
		refs = append(refs, d.Background)
		if d.LogoImage != "" {
			refs = append(refs, d.LogoImage)
		}
	}
	loader.Preload(refs...)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open submissions: %w", err)
	}
	relays := submission.ConfiguredRelays(cfg.SheetsURL, cfg.BackendURL, nil)
	for _, r := range relays {
		logger.Info("submission relay enabled", "relay", r.Name())
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Loader:   loader,
		Renderer: renderer,
		Exporter: export.New(renderer, export.Options{
			Width:       cfg.ExportWidth,
			Supersample: cfg.Supersample,
			Logger:      logger,
		}),
		Store:       store,
		Submissions: submission.NewService(store, relays, cfg.RelayTimeout, logger),
	}, nil
}

// Close waits for pending relay deliveries and closes the store.
func (a *App) Close() error {
	a.Submissions.Wait()
	return a.Store.Close()
}
