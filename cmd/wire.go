package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/term"

	authadapter "github.com/bnema/nlsh/internal/adapters/auth"
	"github.com/bnema/nlsh/internal/adapters/blob/chain"
	"github.com/bnema/nlsh/internal/adapters/blob/file"
	"github.com/bnema/nlsh/internal/adapters/copilot"
	"github.com/bnema/nlsh/internal/adapters/credentials"
	"github.com/bnema/nlsh/internal/adapters/repo/jsonfile"
	"github.com/bnema/nlsh/internal/adapters/shell"
	"github.com/bnema/nlsh/internal/application"
	"github.com/bnema/nlsh/internal/config"
	"github.com/bnema/nlsh/internal/ports"
)

const passPrefix = "nlsh"

type app struct {
	cfg         config.Config
	logLevel    *slog.LevelVar
	logger      *slog.Logger
	identity    *application.IdentityService
	suggestions *application.SuggestionService
	sessions    ports.SessionRepository
	runner      ports.CommandRunner
	clock       ports.Clock
	redact      func(string) string
	isTerminal  func(io.Writer) bool
	now         func() time.Time
}

func wireApp() (*app, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logLevel := &slog.LevelVar{}
	if cfg.Verbose {
		logLevel.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	fileStore := file.NewStore(cfg.Dir)
	credentialBlobs, err := credentialBackend(cfg, fileStore)
	if err != nil {
		return nil, err
	}
	store := credentials.NewStore(credentialBlobs, logger)

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	clock := ports.SystemClock{}

	authorizer := authadapter.DeviceFlowAdapter{
		API: authadapter.API{
			BaseURL:        cfg.Auth.GitHubURL,
			DeviceCodePath: "/login/device/code",
			TokenPath:      "/login/oauth/access_token",
		},
		ClientID:       cfg.Auth.ClientID,
		Scopes:         cfg.Auth.Scopes,
		HTTPClient:     httpClient,
		RequestTimeout: cfg.HTTP.Timeout,
		Clock:          clock,
		Logger:         logger,
	}
	issuer := copilot.TokenClient{
		BaseURL:        cfg.Copilot.TokenURL,
		EditorVersion:  cfg.Copilot.EditorVersion,
		HTTPClient:     httpClient,
		RequestTimeout: cfg.HTTP.Timeout,
	}
	completions := copilot.CompletionClient{
		BaseURL:        cfg.Copilot.APIURL,
		Model:          cfg.Copilot.Model,
		IntegrationID:  cfg.Copilot.IntegrationID,
		EditorVersion:  cfg.Copilot.EditorVersion,
		HTTPClient:     httpClient,
		RequestTimeout: cfg.HTTP.Timeout,
	}

	broker := application.NewTokenBroker(store, issuer, clock, logger)

	var redact func(string) string
	if cfg.Session.Redact {
		redact = shell.Redact
	}

	return &app{
		cfg:         cfg,
		logLevel:    logLevel,
		logger:      logger,
		identity:    application.NewIdentityService(authorizer, store, logger),
		suggestions: application.NewSuggestionService(broker, completions, cfg.Session.ContextLimit, logger),
		sessions:    jsonfile.NewRepository(fileStore),
		runner:      shell.Runner{Shell: shellPath()},
		clock:       clock,
		redact:      redact,
		isTerminal:  isTerminal,
		now:         time.Now,
	}, nil
}

func credentialBackend(cfg config.Config, fileStore *file.Store) (ports.BlobStore, error) {
	switch cfg.Credentials.Backend {
	case config.BackendPass:
		store, err := chain.NewPassFirstWithFileFallback(passPrefix, cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("wire credential store chain: %w", err)
		}
		return store, nil
	default:
		return fileStore, nil
	}
}

func (a *app) newSessionLog() *application.SessionLog {
	return application.NewSessionLog(a.sessions, a.clock, a.redact)
}

func shellPath() string {
	return envOrDefault("SHELL", "/bin/sh")
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (a *app) verbose() bool {
	return a.logLevel.Level() <= slog.LevelDebug
}
