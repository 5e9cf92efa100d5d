package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awscognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"travel-social-functions/handler"
	"travel-social-functions/internal/integrations/authadmin"
	"travel-social-functions/internal/integrations/mailer"
	"travel-social-functions/internal/integrations/paramstore"
	"travel-social-functions/internal/repository"
	"travel-social-functions/internal/usecase"
)

func main() {
	ctx := context.Background()
	logger := slog.Default()

	// ---- Configuration (read only here) ----
	usersTable := mustEnv("USERS_TABLE")
	logsTable := mustEnv("LOGS_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	userPoolID := mustEnv("USER_POOL_ID")
	smtpHost := mustEnv("SMTP_HOST")
	smtpFrom := mustEnv("SMTP_FROM")
	smtpPort := envInt("SMTP_PORT", 587)

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
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	users, err := repository.NewUsers(dynamoClient, usersTable)
	if err != nil {
		logger.Error("failed to create users store", "err", err)
		os.Exit(1)
	}
	logs, err := repository.NewLogs(dynamoClient, logsTable)
	if err != nil {
		logger.Error("failed to create logs store", "err", err)
		os.Exit(1)
	}
	mailClient, err := mailer.NewClient(ssmClient, smtpHost, smtpPort, smtpFrom,
		paramstore.Join(paramPrefix, "smtp-user"),
		paramstore.Join(paramPrefix, "smtp-password"))
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	authClient, err := authadmin.New(awscognito.NewFromConfig(cfg), userPoolID)
	if err != nil {
		logger.Error("failed to create auth admin client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	moderation, err := usecase.NewModerationService(users, mailClient, authClient, logs, logger)
	if err != nil {
		logger.Error("failed to create moderation service", "err", err)
		os.Exit(1)
	}
	migration, err := usecase.NewMigrationService(users, logger)
	if err != nil {
		logger.Error("failed to create migration service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewAdminHandler(moderation, migration)
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
