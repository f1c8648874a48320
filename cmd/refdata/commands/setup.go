package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/openfroyo/refdata/pkg/config"
	"github.com/openfroyo/refdata/pkg/loader"
	"github.com/openfroyo/refdata/pkg/stores"
	"github.com/openfroyo/refdata/pkg/telemetry"
)

// app holds the components a command runs against.
type app struct {
	cfg    *config.Config
	tel    *telemetry.Telemetry
	store  *stores.MemoryStore
	loader *loader.Loader
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(mutate func(*config.Config)) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if len(seedPaths) > 0 {
		cfg.Seeds = seedPaths
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires config, telemetry, store and loader.
func newApp(ctx context.Context, mutate func(*config.Config)) (*app, error) {
	cfg, err := loadConfig(mutate)
	if err != nil {
		return nil, err
	}

	tcfg := cfg.Telemetry.ToTelemetry(buildVersion)
	if verbose {
		tcfg.Logging.Level = "debug"
	}
	tel, err := telemetry.NewTelemetry(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	store, err := stores.NewMemoryStore(stores.Config{HistorySize: cfg.Store.HistorySize})
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	l, err := loader.New(cfg, store, tel)
	if err != nil {
		_ = store.Close()
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	return &app{cfg: cfg, tel: tel, store: store, loader: l}, nil
}

// Close releases the store and flushes telemetry.
func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	storeErr := a.store.Close()
	if err := a.tel.Shutdown(ctx); err != nil {
		return err
	}
	return storeErr
}
