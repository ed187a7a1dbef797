package migrate

import (
	"context"
	"fmt"

	"github.com/heatparts/storefront/pkg/config"
	"github.com/heatparts/storefront/pkg/db"
	"github.com/heatparts/storefront/pkg/logger"
)

// MaybeAutoRun applies the embedded migrations on startup when enabled.
// The device store is sqlite by default, so the API binary owns its schema.
func MaybeAutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "driver": client.Driver()}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Up(ctx, sqlDB, client.Driver()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
