// Package commands implements the grocery command line.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"grocery/internal/config"
	"grocery/internal/database"
	"grocery/pkg/logger"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "grocery",
	Short: "Grocery marketplace and point-of-sale backend",
	Long: `Grocery connects consumers, shop owners, delivery partners and
administrators: nearby shop search, shop catalogs, checkout, walk-in sales,
delivery assignment and invoicing.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
