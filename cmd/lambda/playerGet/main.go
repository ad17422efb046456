package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dartslab/dartslab/internal/aws/auth"
	"github.com/dartslab/dartslab/internal/aws/storage"
	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/dartslab/dartslab/pkg/logging"
	"go.uber.org/zap"
)

var playerUsecase *usecases.PlayerUsecase

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient := storage.NewClient(dynamodb.NewFromConfig(cfg), storage.NewConfigFromEnv())
	playerUsecase = usecases.NewPlayerUsecase(storageClient, nil)
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := auth.SessionId(event.RequestContext.Authorizer); err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	players, err := playerUsecase.Snapshots(ctx, []string{event.PathParameters["code"]})
	if err != nil {
		switch {
		case errors.Is(err, usecases.ErrInvalidPlayer):
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
		case errors.Is(err, interfaces.ErrPlayerNotFound):
			return events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound}, nil
		}
		logging.Error("Failed to get player", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	playerJson, err := json.Marshal(dtos.PlayerResponseFromEntity(players[0]))
	if err != nil {
		logging.Error("Failed to get player", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(playerJson)}, nil
}

func main() {
	lambda.Start(handler)
}
