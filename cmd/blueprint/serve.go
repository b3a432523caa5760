package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "blueprint/internal/adapter/http"
	"blueprint/internal/adapter/llm"
	"blueprint/internal/adapter/memory"
	"blueprint/internal/adapter/mongodb"
	"blueprint/internal/adapter/postgres"
	"blueprint/internal/app"
	"blueprint/internal/config"
	"blueprint/internal/domain"
	"blueprint/internal/metrics"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			logger := newLogger(cfg.Log, os.Stderr)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

// repositories bundles the three ports a store driver must satisfy.
type repositories struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (repositories, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("db open: %w", err)
		}
		return repositories{db, db, db}, func() { _ = db.Close() }, nil
	case config.DriverMongo:
		s, err := mongodb.Open(ctx, cfg.MongoURL, cfg.MongoDatabase, logger)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("mongo open: %w", err)
		}
		return repositories{s, s, s}, func() { _ = s.Close(context.Background()) }, nil
	default:
		db := memory.New()
		logger.Warn("using in-memory store; data is lost on restart")
		return repositories{db, db, db}, func() {}, nil
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repos, closeStore, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	secret := cfg.Auth.SecretKey
	if secret == "" {
		secret = randomSecret()
		logger.Warn("SECRET_KEY not set; tokens will not survive a restart")
	}
	tokens, err := app.NewTokenIssuer(secret)
	if err != nil {
		return err
	}

	m := metrics.New()

	analyzerOpts := []app.AnalyzerOption{
		app.WithFallbackCounter(m.AnalysisFallbacks),
		app.WithAnalysisTimeout(cfg.OpenAI.Timeout),
	}
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.New(llm.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		})
		if err != nil {
			return err
		}
		analyzerOpts = append(analyzerOpts, app.WithCompleter(client))
	} else {
		logger.Info("OPENAI_API_KEY not set; using heuristic idea analysis")
	}

	authSvc := app.NewAuthService(repos.users, tokens,
		app.WithTokenTTL(cfg.Auth.TokenTTL),
		app.WithBcryptCost(cfg.Auth.BcryptCost),
	)
	projectSvc := app.NewProjectService(repos.projects, repos.tasks, app.NewAnalyzer(logger, analyzerOpts...)).
		WithCounters(m.ProjectsCreated, m.TasksGenerated).
		WithLogger(logger)
	taskSvc := app.NewTaskService(repos.projects, repos.tasks)
	assistantSvc := app.NewAssistantService(repos.projects, repos.tasks)

	opts := []adapthttp.Option{
		adapthttp.WithLogger(logger),
		adapthttp.WithMetrics(m),
		adapthttp.WithWebDir(cfg.WebDir),
	}
	if cfg.OIDC.Enabled() {
		sso, err := adapthttp.NewSSO(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return fmt.Errorf("oidc: %w", err)
		}
		opts = append(opts, adapthttp.WithSSO(sso))
		logger.Info("single sign-on enabled", "issuer", cfg.OIDC.Issuer)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(authSvc, projectSvc, taskSvc, assistantSvc, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
