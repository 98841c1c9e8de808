package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildercircle/server/internal/auth"
	"github.com/buildercircle/server/internal/config"
	"github.com/buildercircle/server/internal/domain/admins"
	"github.com/buildercircle/server/internal/storage/postgres"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
	adminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		store, err := postgres.NewStore(pool)
		if err != nil {
			return err
		}
		tokens, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
		if err != nil {
			return fmt.Errorf("token manager: %w", err)
		}

		service := admins.NewService(store.Admins(), tokens, logger)
		admin, err := service.Register(ctx, admins.RegisterParams{
			Email:    adminEmail,
			Password: adminPassword,
			Name:     adminName,
			Role:     adminRole,
		})
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s admin %s (%s)\n", admin.Role, admin.Email, admin.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (min 8 characters)")
	adminCreateCmd.Flags().StringVar(&adminName, "name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", admins.RoleAdmin, "role (admin or superadmin)")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
