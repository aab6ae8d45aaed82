package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/99minutos/client-contracts/internal/infrastructure/config"
	"github.com/99minutos/client-contracts/pkg/logger"
)

const serviceName = "client-contracts"

var rootCmd = &cobra.Command{
	Use:   "client-contracts",
	Short: "Client and contract registry API",
	Long: `client-contracts serves the HTTP API for person and company clients
and their cost contracts.

Use "serve" to run the API, "migrate" to bring the schema up to date and
"create-admin" to bootstrap the first API user.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// bootstrap loads configuration and initialises the logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})
	return cfg, log, nil
}
