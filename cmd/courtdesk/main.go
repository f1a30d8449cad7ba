// Command courtdesk runs the court case-management API.
//
//	courtdesk serve     start the HTTP server
//	courtdesk migrate   create/upgrade the schema and seed role permissions
//
// Configuration comes from the environment (optionally a .env file and a
// YAML file named by CONFIG_FILE); see internal/config.
//
// @title                      Courtdesk API
// @version                    1.0
// @description                Case, filing, dispatch, fine, routing and hearing records for court clerks, plus access analytics.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbourn/courtdesk-backend/internal/config"
	"github.com/tbourn/courtdesk-backend/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

var envFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "courtdesk",
		Short:         "Court case-management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration (ignored when missing)")
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// loadConfig reads the dotenv file, loads configuration, and sets up the
// global logger.
func loadConfig() (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	sysutil.ConfigureLogger(sysutil.LoggerOptions{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Out:     os.Stderr,
		Service: cfg.OTEL.ServiceName,
		Version: buildVersion(),
	})
	return cfg, nil
}

func buildVersion() string {
	return sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
