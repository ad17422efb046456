package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

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

var settlementUsecase *usecases.SettlementUsecase

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient := storage.NewClient(dynamodb.NewFromConfig(cfg), storage.NewConfigFromEnv())
	settlementUsecase = usecases.NewSettlementUsecase(storageClient, nil, settlementConfigFromEnv())
}

func settlementConfigFromEnv() usecases.SettlementConfig {
	cfg := usecases.SettlementConfig{MaxAttempts: 3, Backoff: 50 * time.Millisecond}
	if n, err := strconv.Atoi(os.Getenv("COMMIT_MAX_ATTEMPTS")); err == nil && n > 0 {
		cfg.MaxAttempts = n
	}
	if d, err := time.ParseDuration(os.Getenv("COMMIT_BACKOFF")); err == nil {
		cfg.Backoff = d
	}
	return cfg
}

// handler settles a match scored by the client. On failure the request body
// is echoed back so it can be resubmitted unchanged. Resubmitting a match
// that was already settled answers 200 with the outcome.
func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	sessionId, err := auth.SessionId(event.RequestContext.Authorizer)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}

	var req dtos.SettleMatchRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}
	outcome, err := dtos.SettleMatchRequestToOutcome(req)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest, Body: err.Error()}, nil
	}

	record, err := settlementUsecase.Commit(ctx, outcome)
	if errors.Is(err, usecases.ErrMatchSettled) {
		outcomeJson, err := json.Marshal(dtos.OutcomeResponseFromOutcome(*outcome))
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
				fmt.Errorf("failed to marshal response: %w", err)
		}
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(outcomeJson)}, nil
	}
	if err != nil {
		logging.Error("failed to settle match",
			zap.String("session_id", sessionId),
			zap.Strings("players", outcome.Codes()),
			zap.Error(err),
		)
		return events.APIGatewayProxyResponse{StatusCode: statusFor(err), Body: event.Body}, nil
	}

	recordJson, err := json.Marshal(dtos.MatchRecordResponseFromEntity(record, false))
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError},
			fmt.Errorf("failed to marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusCreated, Body: string(recordJson)}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecases.ErrInvalidOutcome):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrTxConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func main() {
	lambda.Start(handler)
}
