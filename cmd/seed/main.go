// Package main seeds the database with a default organization so a
// fresh deployment has a usable tenant. It goes through the same
// repository contract as the API; there is no privileged path.
package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/taskhive/backend/config"
	"github.com/taskhive/backend/internal/models"
	"github.com/taskhive/backend/internal/organizations"
	"github.com/taskhive/backend/internal/store"
	"github.com/taskhive/backend/pkg/database"
)

const defaultSlug = "default-organization"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	repo := organizations.NewRepository(pool)
	if _, err := repo.GetBySlug(ctx, defaultSlug); err == nil {
		logger.Info("default organization already exists", zap.String("slug", defaultSlug))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Fatal("lookup default organization", zap.Error(err))
	}

	org := &models.Organization{
		Name:         "Default Organization",
		ContactEmail: "contact@default.com",
	}
	if err := repo.Create(ctx, org); err != nil {
		logger.Fatal("create default organization", zap.Error(err))
	}
	logger.Info("created default organization",
		zap.String("slug", org.Slug), zap.String("id", org.ID.String()))
}
