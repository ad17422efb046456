package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dartslab/dartslab/internal/aws/auth"
	"github.com/dartslab/dartslab/internal/aws/storage"
	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/usecases"
)

const (
	defaultLimit = 20
	maxLimit     = 100
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
	limit, err := extractLimit(event.QueryStringParameters)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: err.Error()}, nil
	}

	records, err := playerUsecase.History(ctx, limit)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to list match records: %w", err)
	}

	matchRecordListJson, err := json.Marshal(dtos.MatchRecordListResponseFromEntities(records))
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(matchRecordListJson)}, nil
}

func extractLimit(params map[string]string) (int, error) {
	limitStr, ok := params["limit"]
	if !ok {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %v", err)
	}
	if limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return limit, nil
}

func main() {
	lambda.Start(handler)
}
