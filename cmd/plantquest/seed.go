package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Ramouth/BiomeQuest-sub000/internal/catalog"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
)

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert plants, badges and users from a catalog file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		path := seedPath
		if path == "" {
			path = cfg.Catalog.SeedPath
		}
		if path == "" {
			return fmt.Errorf("no catalog file: pass --file or set catalog.seed_path")
		}

		file, err := catalog.Load(path)
		if err != nil {
			return err
		}

		db, err := repository.NewDB(&cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() {
			_ = db.Close()
		}()

		if cfg.Database.AutoMigrate {
			if err := db.AutoMigrate(); err != nil {
				return fmt.Errorf("failed to auto-migrate: %w", err)
			}
		}

		result, err := catalog.Seed(cmd.Context(), db, file, catalog.Defaults{
			WeeklyGoal:  cfg.Engine.DefaultWeeklyGoal,
			MonthlyGoal: cfg.Engine.DefaultMonthlyGoal,
		}, log)
		if err != nil {
			return err
		}

		cmd.Printf("seeded %d plants, %d badges, %d users from %s\n", result.Plants, result.Badges, result.Users, path)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedPath, "file", "f", "", "catalog YAML file (default: catalog.seed_path)")
}
