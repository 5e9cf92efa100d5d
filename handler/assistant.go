package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"travel-social-functions/internal/domain"
	"travel-social-functions/internal/usecase"
)

// AssistantUsecase is the assistant surface the handler dispatches to.
type AssistantUsecase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	ResetSession(ctx context.Context, userID, sessionID string) error
	ListSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error)
	GetSessionDetail(ctx context.Context, userID, sessionID string) (usecase.SessionDetail, error)
}

// AssistantHandler serves the assistant's callable endpoints.
type AssistantHandler struct {
	uc AssistantUsecase
}

func NewAssistantHandler(uc AssistantUsecase) (*AssistantHandler, error) {
	if uc == nil {
		return nil, errors.New("handler: assistant usecase must not be nil")
	}
	return &AssistantHandler{uc: uc}, nil
}

type chatRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"sessionId"`
	UserContext string `json:"userContext"`
}

type chatResponse struct {
	Success     bool    `json:"success"`
	SessionID   string  `json:"sessionId"`
	Message     string  `json:"message"`
	WeatherData *string `json:"weatherData"`
}

type sessionIDRequest struct {
	SessionID string `json:"sessionId"`
}

type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type sessionSummaryBody struct {
	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage"`
}

type listSessionsResponse struct {
	Success  bool                 `json:"success"`
	Sessions []sessionSummaryBody `json:"sessions"`
}

type sessionDetailBody struct {
	SessionID string           `json:"sessionId"`
	Messages  []domain.Message `json:"messages"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type sessionDetailResponse struct {
	Success bool              `json:"success"`
	Session sessionDetailBody `json:"session"`
}

// Handle routes one callable request by path.
func (h *AssistantHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event)
	caller := callerID(event)

	switch {
	case strings.HasSuffix(event.Path, "/chat"):
		return h.chat(ctx, event, caller, corrID), nil
	case strings.HasSuffix(event.Path, "/sessions/reset"):
		return h.reset(ctx, event, caller, corrID), nil
	case strings.HasSuffix(event.Path, "/sessions/detail"):
		return h.detail(ctx, event, caller, corrID), nil
	case strings.HasSuffix(event.Path, "/sessions"):
		return h.list(ctx, caller, corrID), nil
	default:
		return respondJSON(http.StatusNotFound, corrID, errorResponse{
			Error:   string(usecase.ErrorNotFound),
			Message: "unknown endpoint",
		}), nil
	}
}

func (h *AssistantHandler) chat(ctx context.Context, event events.APIGatewayProxyRequest, caller, corrID string) events.APIGatewayProxyResponse {
	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondJSON(http.StatusBadRequest, corrID, errorResponse{
			Error:   string(usecase.ErrorInvalidArgument),
			Message: "malformed request body",
		})
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{
		UserID:      caller,
		Message:     req.Message,
		SessionID:   req.SessionID,
		UserContext: req.UserContext,
	})
	if err != nil {
		return respondError(err, corrID)
	}

	var weatherData *string
	if out.CityMatched {
		weatherData = &out.WeatherBlock
	}
	return respondJSON(http.StatusOK, corrID, chatResponse{
		Success:     true,
		SessionID:   out.SessionID,
		Message:     out.Reply,
		WeatherData: weatherData,
	})
}

func (h *AssistantHandler) reset(ctx context.Context, event events.APIGatewayProxyRequest, caller, corrID string) events.APIGatewayProxyResponse {
	var req sessionIDRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondJSON(http.StatusBadRequest, corrID, errorResponse{
			Error:   string(usecase.ErrorInvalidArgument),
			Message: "malformed request body",
		})
	}
	if err := h.uc.ResetSession(ctx, caller, req.SessionID); err != nil {
		return respondError(err, corrID)
	}
	return respondJSON(http.StatusOK, corrID, resetResponse{
		Success: true,
		Message: "Session reset successfully",
	})
}

func (h *AssistantHandler) list(ctx context.Context, caller, corrID string) events.APIGatewayProxyResponse {
	summaries, err := h.uc.ListSessions(ctx, caller)
	if err != nil {
		return respondError(err, corrID)
	}
	sessions := make([]sessionSummaryBody, 0, len(summaries))
	for _, s := range summaries {
		sessions = append(sessions, sessionSummaryBody{
			SessionID:    s.SessionID,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: s.MessageCount,
			LastMessage:  s.LastMessage,
		})
	}
	return respondJSON(http.StatusOK, corrID, listSessionsResponse{Success: true, Sessions: sessions})
}

func (h *AssistantHandler) detail(ctx context.Context, event events.APIGatewayProxyRequest, caller, corrID string) events.APIGatewayProxyResponse {
	var req sessionIDRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondJSON(http.StatusBadRequest, corrID, errorResponse{
			Error:   string(usecase.ErrorInvalidArgument),
			Message: "malformed request body",
		})
	}
	detail, err := h.uc.GetSessionDetail(ctx, caller, req.SessionID)
	if err != nil {
		return respondError(err, corrID)
	}
	return respondJSON(http.StatusOK, corrID, sessionDetailResponse{
		Success: true,
		Session: sessionDetailBody{
			SessionID: detail.SessionID,
			Messages:  detail.Messages,
			CreatedAt: detail.CreatedAt,
			UpdatedAt: detail.UpdatedAt,
		},
	})
}
