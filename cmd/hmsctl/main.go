package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/service/account"
	"github.com/jwalitptl/hospital-api/pkg/logger"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hmsctl",
		Short: "Hospital API administration",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(&logger.Config{Level: logger.InfoLevel, Pretty: true})
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(bootstrapStaffCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info().Str("database", cfg.Database.Name).Msg("schema applied")
			return nil
		},
	}
}

// bootstrapStaffCmd creates the first staff account, which can then add doctors and staff
// over the API.
func bootstrapStaffCmd() *cobra.Command {
	var req model.RegisterStaffRequest

	cmd := &cobra.Command{
		Use:   "bootstrap-staff",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("HMS_BOOTSTRAP_PASSWORD")
			}
			if req.Password == "" {
				return fmt.Errorf("--password or HMS_BOOTSTRAP_PASSWORD is required")
			}
			req.PasswordConfirm = req.Password

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := account.NewService(postgres.NewStore(db), security.NewBcryptHasher(bcrypt.DefaultCost))
			created, err := svc.Register(cmd.Context(), &req)
			if err != nil {
				return err
			}
			log.Info().
				Str("username", created.Username).
				Str("identity_id", created.IdentityID.String()).
				Msg("staff account created")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Username, "username", "", "login name")
	flags.StringVar(&req.Password, "password", "", "password (defaults to $HMS_BOOTSTRAP_PASSWORD)")
	flags.StringVar(&req.FirstName, "first-name", "", "first name")
	flags.StringVar(&req.LastName, "last-name", "", "last name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.Role, "role", "Administrator", "staff job title")
	flags.StringVar(&req.Phone, "phone", "", "contact phone")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}
