package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"autoservice-agent/handler"
	"autoservice-agent/internal/integrations/gemini"
	"autoservice-agent/internal/integrations/paramstore"
	"autoservice-agent/internal/repository"
	"autoservice-agent/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// ---- Configuration (read only here) ----
	vehicleTable := mustEnv(logger, "VEHICLE_TABLE")
	paramPrefix := mustEnv(logger, "PARAM_PREFIX")
	model := os.Getenv("GEMINI_MODEL")
	turnTimeout := time.Duration(envInt("TURN_TIMEOUT_SECONDS", 30)) * time.Second

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		logger.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), vehicleTable)
	if err != nil {
		logger.Error("failed to create vehicle store", "err", err)
		os.Exit(1)
	}
	llm, err := gemini.NewClient(ssmClient, paramPrefix,
		gemini.WithModel(model),
		gemini.WithDefaultMessage(usecase.WelcomeMessage),
		gemini.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create Gemini client", "err", err)
		os.Exit(1)
	}

	// ---- Session ----
	assistant, err := usecase.NewAssistant(store)
	if err != nil {
		logger.Error("failed to create assistant", "err", err)
		os.Exit(1)
	}
	console, err := handler.NewConsole(os.Stdin, os.Stdout, handler.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create console", "err", err)
		os.Exit(1)
	}
	session, err := usecase.NewSession(usecase.SessionConfig{
		LLM:         llm,
		Assistant:   assistant,
		Speaker:     console,
		Logger:      logger,
		TurnTimeout: turnTimeout,
	})
	if err != nil {
		logger.Error("failed to create session", "err", err)
		os.Exit(1)
	}

	logger.Info("session started", "session", session.ID(), "table", vehicleTable)
	if err := session.Run(ctx, console.Inputs(ctx)); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session ended with error", "err", err)
		os.Exit(1)
	}
}

func mustEnv(logger *slog.Logger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		logger.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
