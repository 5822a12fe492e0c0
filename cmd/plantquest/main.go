// Command plantquest runs the plant diversity tracker: the HTTP API,
// schema migrations and catalog seeding.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "plantquest",
	Short:         "PlantQuest tracks plant diversity with points, streaks and badges",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// loadConfig reads .env (if present) before viper so the bound environment
// variables see its values.
func loadConfig() (*config.Config, *logger.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	return cfg, log, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
