package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dartslab/dartslab/internal/aws/auth"
	"github.com/dartslab/dartslab/internal/aws/storage"
	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/domains/entities"
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

	var (
		players []entities.Player
		err     error
	)
	switch event.QueryStringParameters["orderBy"] {
	case "elo":
		players, err = playerUsecase.Leaderboard(ctx)
	case "", "code":
		players, err = playerUsecase.ListPlayers(ctx)
	default:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
	}
	if err != nil {
		logging.Error("Failed to list players", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	playerListJson, err := json.Marshal(dtos.PlayerListResponseFromEntities(players))
	if err != nil {
		logging.Error("Failed to list players", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(playerListJson)}, nil
}

func main() {
	lambda.Start(handler)
}
