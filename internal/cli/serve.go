package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/client-contracts/internal/app"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		a, err := app.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")
		if !skipMigrate {
			if err := a.Migrate(ctx); err != nil {
				return err
			}
		}

		e := a.Router()
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Msg("http server listening")
			errCh <- e.Start(":" + cfg.Port)
		}()

		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	serveCmd.Flags().Bool("skip-migrate", false, "Do not apply schema migrations at startup")
}
