package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"travel-social-functions/internal/usecase"
)

// ModerationUsecase is the admin moderation surface.
type ModerationUsecase interface {
	SendWarningEmail(ctx context.Context, in usecase.ViolationEmailInput) (usecase.EmailOutput, error)
	SendBanEmail(ctx context.Context, in usecase.ViolationEmailInput) (usecase.EmailOutput, error)
	SetAuthDisabled(ctx context.Context, in usecase.AuthToggleInput) (bool, error)
}

// MigrationUsecase is the one-time points migration surface.
type MigrationUsecase interface {
	MigratePoints(ctx context.Context, callerID string) (usecase.MigrationResult, error)
}

// AdminHandler serves the moderation and migration endpoints.
type AdminHandler struct {
	moderation ModerationUsecase
	migration  MigrationUsecase
}

func NewAdminHandler(moderation ModerationUsecase, migration MigrationUsecase) (*AdminHandler, error) {
	if moderation == nil {
		return nil, errors.New("handler: moderation usecase must not be nil")
	}
	if migration == nil {
		return nil, errors.New("handler: migration usecase must not be nil")
	}
	return &AdminHandler{moderation: moderation, migration: migration}, nil
}

type warningEmailRequest struct {
	UserID          string `json:"userId"`
	ViolationType   string `json:"violationType"`
	ViolationReason string `json:"violationReason"`
	AdminNote       string `json:"adminNote"`
	WarningCount    int    `json:"warningCount"`
}

type banEmailRequest struct {
	UserID        string `json:"userId"`
	ViolationType string `json:"violationType"`
	BanReason     string `json:"banReason"`
	AdminNote     string `json:"adminNote"`
	WarningCount  int    `json:"warningCount"`
}

type emailResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Message   string `json:"message,omitempty"`
}

type authToggleRequest struct {
	UserID  string `json:"userId"`
	Disable *bool  `json:"disable"`
}

type authToggleResponse struct {
	Success  bool `json:"success"`
	Disabled bool `json:"disabled"`
}

type migrationResponse struct {
	Success  bool                     `json:"success"`
	Migrated int                      `json:"migrated"`
	Skipped  int                      `json:"skipped"`
	Errors   []usecase.MigrationError `json:"errors"`
}

// Handle routes one admin request by path.
func (h *AdminHandler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event)
	caller := callerID(event)

	switch {
	case strings.HasSuffix(event.Path, "/emails/warning"):
		return h.warningEmail(ctx, event, caller, corrID), nil
	case strings.HasSuffix(event.Path, "/emails/ban"):
		return h.banEmail(ctx, event, caller, corrID), nil
	case strings.HasSuffix(event.Path, "/auth/disable"):
		return h.authToggle(ctx, event, caller, corrID), nil
	case strings.HasSuffix(event.Path, "/migrations/points"):
		return h.migratePoints(ctx, caller, corrID), nil
	default:
		return respondJSON(http.StatusNotFound, corrID, errorResponse{
			Error:   string(usecase.ErrorNotFound),
			Message: "unknown endpoint",
		}), nil
	}
}

func (h *AdminHandler) warningEmail(ctx context.Context, event events.APIGatewayProxyRequest, caller, corrID string) events.APIGatewayProxyResponse {
	var req warningEmailRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondJSON(http.StatusBadRequest, corrID, errorResponse{
			Error:   string(usecase.ErrorInvalidArgument),
			Message: "malformed request body",
		})
	}
	out, err := h.moderation.SendWarningEmail(ctx, usecase.ViolationEmailInput{
		CallerID:      caller,
		UserID:        req.UserID,
		ViolationType: req.ViolationType,
		Reason:        req.ViolationReason,
		AdminNote:     req.AdminNote,
		WarningCount:  req.WarningCount,
	})
	if err != nil {
		return respondError(err, corrID)
	}
	return respondJSON(http.StatusOK, corrID, emailResult(out))
}

func (h *AdminHandler) banEmail(ctx context.Context, event events.APIGatewayProxyRequest, caller, corrID string) events.APIGatewayProxyResponse {
	var req banEmailRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondJSON(http.StatusBadRequest, corrID, errorResponse{
			Error:   string(usecase.ErrorInvalidArgument),
			Message: "malformed request body",
		})
	}
	out, err := h.moderation.SendBanEmail(ctx, usecase.ViolationEmailInput{
		CallerID:      caller,
		UserID:        req.UserID,
		ViolationType: req.ViolationType,
		Reason:        req.BanReason,
		AdminNote:     req.AdminNote,
		WarningCount:  req.WarningCount,
	})
	if err != nil {
		return respondError(err, corrID)
	}
	return respondJSON(http.StatusOK, corrID, emailResult(out))
}

func emailResult(out usecase.EmailOutput) emailResponse {
	if !out.Sent {
		return emailResponse{Success: false, Message: out.Message}
	}
	return emailResponse{Success: true, MessageID: out.MessageID}
}

func (h *AdminHandler) authToggle(ctx context.Context, event events.APIGatewayProxyRequest, caller, corrID string) events.APIGatewayProxyResponse {
	var req authToggleRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		return respondJSON(http.StatusBadRequest, corrID, errorResponse{
			Error:   string(usecase.ErrorInvalidArgument),
			Message: "malformed request body",
		})
	}
	// disable defaults to true when omitted.
	disable := req.Disable == nil || *req.Disable
	disabled, err := h.moderation.SetAuthDisabled(ctx, usecase.AuthToggleInput{
		CallerID: caller,
		UserID:   req.UserID,
		Disable:  disable,
	})
	if err != nil {
		return respondError(err, corrID)
	}
	return respondJSON(http.StatusOK, corrID, authToggleResponse{Success: true, Disabled: disabled})
}

func (h *AdminHandler) migratePoints(ctx context.Context, caller, corrID string) events.APIGatewayProxyResponse {
	result, err := h.migration.MigratePoints(ctx, caller)
	if err != nil {
		return respondError(err, corrID)
	}
	errs := result.Errors
	if errs == nil {
		errs = []usecase.MigrationError{}
	}
	return respondJSON(http.StatusOK, corrID, migrationResponse{
		Success:  true,
		Migrated: result.Migrated,
		Skipped:  result.Skipped,
		Errors:   errs,
	})
}
