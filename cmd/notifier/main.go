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
	"travel-social-functions/internal/integrations/fcm"
	"travel-social-functions/internal/integrations/paramstore"
	"travel-social-functions/internal/repository"
	"travel-social-functions/internal/usecase"
)

func main() {
	ctx := context.Background()
	logger := slog.Default()

	usersTable := mustEnv("USERS_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		logger.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	users, err := repository.NewUsers(awsdynamodb.NewFromConfig(cfg), usersTable)
	if err != nil {
		logger.Error("failed to create users store", "err", err)
		os.Exit(1)
	}
	pushClient, err := fcm.NewClient(ssmClient, paramstore.Join(paramPrefix, "fcm-server-key"))
	if err != nil {
		logger.Error("failed to create FCM client", "err", err)
		os.Exit(1)
	}

	notifications, err := usecase.NewNotificationService(users, pushClient, logger)
	if err != nil {
		logger.Error("failed to create notification service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewNotifierHandler(notifications, logger)
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
