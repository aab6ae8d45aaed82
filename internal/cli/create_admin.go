package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/99minutos/client-contracts/internal/core/domain"
	"github.com/99minutos/client-contracts/internal/core/service"
	"github.com/99minutos/client-contracts/internal/infrastructure/db/postgres"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin [username]",
	Short: "Create an admin API user",
	Long: `Create an admin API user. The password is read from --password or,
when omitted, from the ADMIN_PASSWORD environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		if password == "" {
			return errors.New("a password is required (--password or ADMIN_PASSWORD)")
		}

		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return err
		}
		defer pool.Close()

		if _, err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}

		auth := service.NewAuthService(postgres.NewUserRepository(pool), cfg.JWTSecret, cfg.JWTTTL)
		user, err := auth.Register(ctx, args[0], password, domain.RoleAdmin, "")
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		log.Info().Str("username", user.Username).Str("id", user.ID).Msg("admin created")
		fmt.Printf("Created admin %s (%s)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().String("password", "", "Password for the new admin")
}
