package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"travel-social-functions/internal/usecase"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusForCode(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorUnauthenticated:
		return http.StatusUnauthorized
	case usecase.ErrorInvalidArgument:
		return http.StatusBadRequest
	case usecase.ErrorNotFound:
		return http.StatusNotFound
	case usecase.ErrorPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(status int, correlationID string, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    responseHeaders(correlationID),
			Body:       `{"error":"INTERNAL","message":"response encoding failed"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(correlationID),
		Body:       string(raw),
	}
}

func respondError(err error, correlationID string) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return respondJSON(statusForCode(ucErr.Code), correlationID, errorResponse{
			Error:   string(ucErr.Code),
			Message: ucErr.Reason,
		})
	}
	return respondJSON(http.StatusInternalServerError, correlationID, errorResponse{
		Error:   string(usecase.ErrorInternal),
		Message: err.Error(),
	})
}

func responseHeaders(correlationID string) map[string]string {
	return map[string]string{
		"Content-Type":     "application/json",
		"X-Correlation-Id": correlationID,
	}
}

// correlationID reuses the caller-supplied id when one is present, matching
// the header case-insensitively, and mints a fresh one otherwise.
func correlationID(event events.APIGatewayProxyRequest) string {
	for k, v := range event.Headers {
		if http.CanonicalHeaderKey(k) == "X-Correlation-Id" && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
