package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/buildercircle/server/internal/api"
	"github.com/buildercircle/server/internal/auth"
	"github.com/buildercircle/server/internal/config"
	"github.com/buildercircle/server/internal/domain/admins"
	"github.com/buildercircle/server/internal/domain/blogs"
	"github.com/buildercircle/server/internal/domain/contact"
	"github.com/buildercircle/server/internal/domain/creators"
	"github.com/buildercircle/server/internal/domain/events"
	"github.com/buildercircle/server/internal/domain/newsletter"
	"github.com/buildercircle/server/internal/domain/projects"
	"github.com/buildercircle/server/internal/domain/resources"
	"github.com/buildercircle/server/internal/domain/showcase"
	"github.com/buildercircle/server/internal/email"
	"github.com/buildercircle/server/internal/metrics"
	"github.com/buildercircle/server/internal/storage/postgres"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server loads configuration from environment variables, applies any
pending migrations check, bootstraps the initial superadmin account if
ADMIN_EMAIL and ADMIN_PASSWORD are set, and shuts down gracefully on
SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting builder circle server")

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 15*time.Second)
	pool, err := postgres.NewPool(poolCtx, cfg.Database)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	store, err := postgres.NewStore(pool)
	if err != nil {
		return err
	}
	prometheus.MustRegister(metrics.NewPoolCollector(pool))

	tokens, err := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}

	mailer, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email service: %w", err)
	}

	adminsSvc := admins.NewService(store.Admins(), tokens, logger)
	newsletterSvc := newsletter.NewService(store.Newsletter(), mailer, logger)

	deps := api.Deps{
		Config:     cfg,
		Logger:     logger,
		Tokens:     tokens,
		Pinger:     store,
		Admins:     adminsSvc,
		Events:     events.NewService(store.Events(), logger),
		Creators:   creators.NewService(store.Creators(), logger),
		Projects:   projects.NewService(store.Projects(), logger),
		Resources:  resources.NewService(store.Resources(), logger),
		Blogs:      blogs.NewService(store.Blogs(), logger),
		Showcase:   showcase.NewService(store.Showcase(), logger),
		Contact:    contact.NewService(store.Contact(), newsletterOptIn{newsletterSvc}, mailer, logger),
		Newsletter: newsletterSvc,
	}

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapSuperadmin(bootCtx, cfg, adminsSvc, logger); err != nil {
		logger.Error().Err(err).Msg("superadmin bootstrap failed")
	}
	bootCancel()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(deps),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	waitForShutdown(server, logger)
	return nil
}

// newsletterOptIn adapts the newsletter service to the contact form's
// opt-in hook, tagging the acquisition source and dropping the subscribe
// outcome.
type newsletterOptIn struct {
	svc *newsletter.Service
}

func (n newsletterOptIn) Subscribe(ctx context.Context, email, name string) error {
	_, _, err := n.svc.Subscribe(ctx, email, name, newsletter.SourceContactForm)
	return err
}

// bootstrapSuperadmin creates the initial superadmin account from
// ADMIN_EMAIL / ADMIN_PASSWORD. A no-op when the account already exists
// or the variables are unset.
func bootstrapSuperadmin(ctx context.Context, cfg config.Config, svc *admins.Service, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Email == "" || bootstrap.Password == "" {
		logger.Debug().Msg("admin bootstrap env vars not set; skipping")
		return nil
	}

	_, err := svc.Register(ctx, admins.RegisterParams{
		Email:    bootstrap.Email,
		Password: bootstrap.Password,
		Name:     bootstrap.Name,
		Role:     admins.RoleSuperadmin,
	})
	if errors.Is(err, admins.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info().Str("email", admins.NormalizeEmail(bootstrap.Email)).Msg("bootstrapped superadmin account")
	return nil
}

func waitForShutdown(server *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
