package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/courtdesk-backend/internal/entities"
	"github.com/tbourn/courtdesk-backend/internal/repo"
)

func newMigrateCmd() *cobra.Command {
	var skipSeed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema and seed role permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := repo.Open(cfg.Database, false)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if skipSeed {
				return repo.AutoMigrate(db)
			}
			return migrate(cmd.Context(), db)
		},
	}
	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "only migrate the schema")
	return cmd
}

// migrate applies the schema and seeds the default role grants. Seeding is
// idempotent.
func migrate(ctx context.Context, db *gorm.DB) error {
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := repo.SeedRolePermissions(ctx, db, entities.DefaultGrants()); err != nil {
		return fmt.Errorf("seed role permissions: %w", err)
	}
	log.Info().Interface("grants", grantsSummary()).Msg("schema migrated")
	return nil
}

// grantsSummary is logged after seeding.
func grantsSummary() map[string]int {
	out := map[string]int{}
	for role, perms := range entities.DefaultGrants() {
		out[role] = len(perms)
	}
	return out
}
