package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"travel-social-functions/handler"
	"travel-social-functions/internal/integrations/gemini"
	"travel-social-functions/internal/integrations/paramstore"
	"travel-social-functions/internal/integrations/weather"
	"travel-social-functions/internal/repository"
	"travel-social-functions/internal/usecase"
)

func main() {
	ctx := context.Background()
	logger := slog.Default()

	// ---- Configuration (read only here) ----
	sessionsTable := mustEnv("SESSIONS_TABLE")
	sessionsUserIndex := mustEnv("SESSIONS_USER_INDEX")
	paramPrefix := mustEnv("PARAM_PREFIX")

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
	sessions, err := repository.NewSessions(awsdynamodb.NewFromConfig(cfg), sessionsTable, sessionsUserIndex)
	if err != nil {
		logger.Error("failed to create sessions store", "err", err)
		os.Exit(1)
	}
	geminiClient, err := gemini.NewClient(ssmClient, paramstore.Join(paramPrefix, "gemini-api-key"))
	if err != nil {
		logger.Error("failed to create Gemini client", "err", err)
		os.Exit(1)
	}
	weatherClient, err := weather.NewClient(ssmClient, paramstore.Join(paramPrefix, "openweather-api-key"))
	if err != nil {
		logger.Error("failed to create weather client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	assistant, err := usecase.NewAssistantService(sessions, geminiClient, weatherClient, logger)
	if err != nil {
		logger.Error("failed to create assistant service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewAssistantHandler(assistant)
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
