package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"travel-social-functions/internal/domain"
)

const (
	// maxHistoryMessages bounds the prior context handed to the model.
	maxHistoryMessages = 10
	// lastMessagePreviewLen bounds the list-view preview.
	lastMessagePreviewLen = 100
	// overloadDelay is the single fixed pause between fallback attempts when
	// the previous model reported transient overload.
	overloadDelay = 2 * time.Second
)

// defaultModels is the ordered fallback list: primary first, last resort last.
var defaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-flash-latest",
}

// SessionStore persists chat sessions in the document store.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (domain.ChatSession, bool, error)
	Create(ctx context.Context, userID string) (domain.ChatSession, error)
	AppendTurn(ctx context.Context, sessionID string, userMsg, assistantMsg domain.Message) error
	Delete(ctx context.Context, sessionID string) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ChatSession, error)
}

// Generator produces one assistant reply from a fresh chat context.
type Generator interface {
	Generate(ctx context.Context, model, systemPrompt string, history []domain.ChatMessage, message string) (string, error)
}

// WeatherProvider fetches current conditions for a canonical city name.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (domain.WeatherSnapshot, error)
}

// AssistantService orchestrates one assistant exchange: session resolution,
// optional weather augmentation, model fallback and history persistence.
type AssistantService struct {
	sessions SessionStore
	llm      Generator
	weather  WeatherProvider
	models   []string
	logger   *slog.Logger
}

type ChatInput struct {
	UserID      string
	Message     string
	SessionID   string
	UserContext string
}

type ChatOutput struct {
	Reply        string
	SessionID    string
	WeatherBlock string
	CityMatched  bool
}

type SessionDetail struct {
	SessionID string
	Messages  []domain.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Package hooks for tests.
var (
	timeNow = time.Now
	sleepFn = time.Sleep
)

func NewAssistantService(sessions SessionStore, llm Generator, weather WeatherProvider, logger *slog.Logger) (*AssistantService, error) {
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if weather == nil {
		return nil, errors.New("usecase: weather provider must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantService{
		sessions: sessions,
		llm:      llm,
		weather:  weather,
		models:   defaultModels,
		logger:   logger,
	}, nil
}

// Chat runs one exchange and returns the reply plus the session it belongs to.
func (s *AssistantService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return ChatOutput{}, newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidArgument, "empty_message", nil)
	}

	session, err := s.resolveSession(ctx, in.UserID, in.SessionID)
	if err != nil {
		return ChatOutput{}, err
	}
	s.logger.Info("assistant exchange started", "userId", in.UserID, "sessionId", session.SessionID)

	weatherBlock, cityMatched := s.weatherContext(ctx, message)

	systemPrompt := buildSystemPrompt(timeNow(), in.UserContext, weatherBlock)
	history := recentHistory(session.Messages)

	reply, err := s.generateWithFallback(ctx, systemPrompt, history, message)
	if err != nil {
		return ChatOutput{}, err
	}

	now := vietnamTime(timeNow())
	userMsg := domain.Message{Role: domain.RoleUser, Content: message, Timestamp: now}
	assistantMsg := domain.Message{Role: domain.RoleModel, Content: reply, Timestamp: now}
	if err := s.sessions.AppendTurn(ctx, session.SessionID, userMsg, assistantMsg); err != nil {
		return ChatOutput{}, newError(ErrorInternal, "session_append_error", err)
	}

	return ChatOutput{
		Reply:        reply,
		SessionID:    session.SessionID,
		WeatherBlock: weatherBlock,
		CityMatched:  cityMatched,
	}, nil
}

// resolveSession returns the referenced session when it exists, otherwise a
// freshly created one owned by the caller.
func (s *AssistantService) resolveSession(ctx context.Context, userID, sessionID string) (domain.ChatSession, error) {
	if id := strings.TrimSpace(sessionID); id != "" {
		session, found, err := s.sessions.Get(ctx, id)
		if err != nil {
			return domain.ChatSession{}, newError(ErrorInternal, "session_read_error", err)
		}
		if found {
			return session, nil
		}
	}
	session, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return domain.ChatSession{}, newError(ErrorInternal, "session_create_error", err)
	}
	return session, nil
}

// weatherContext runs city extraction and, on a match, fetches conditions.
// Fetch failures degrade to an empty block; they never fail the exchange.
func (s *AssistantService) weatherContext(ctx context.Context, message string) (block string, cityMatched bool) {
	city := ExtractCity(message)
	if city == "" {
		return "", false
	}
	s.logger.Info("fetching weather", "city", city)
	snapshot, err := s.weather.Current(ctx, city)
	if err != nil {
		s.logger.Warn("weather lookup failed", "city", city, "err", err)
		return "", true
	}
	return renderWeatherBlock(snapshot), true
}

// generateWithFallback walks the ordered model list until one attempt
// succeeds. A transient-overload failure earns a single fixed pause before
// the next model; any other failure moves on immediately.
func (s *AssistantService) generateWithFallback(ctx context.Context, systemPrompt string, history []domain.ChatMessage, message string) (string, error) {
	var lastErr error
	for i, model := range s.models {
		s.logger.Info("trying model", "model", model)
		reply, err := s.llm.Generate(ctx, model, systemPrompt, history, message)
		if err == nil {
			s.logger.Info("model succeeded", "model", model)
			return reply, nil
		}
		s.logger.Warn("model failed", "model", model, "err", err)
		lastErr = err
		if isOverloaded(err) && i < len(s.models)-1 {
			sleepFn(overloadDelay)
		}
	}
	return "", newError(ErrorInternal, "all_models_failed", lastErr)
}

func isOverloaded(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "503") || strings.Contains(msg, "overloaded")
}

// recentHistory maps the newest maxHistoryMessages session entries to
// provider-agnostic chat messages, preserving chronological order.
func recentHistory(messages []domain.Message) []domain.ChatMessage {
	if len(messages) > maxHistoryMessages {
		messages = messages[len(messages)-maxHistoryMessages:]
	}
	history := make([]domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		history = append(history, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return history
}

// ResetSession deletes a session document outright.
func (s *AssistantService) ResetSession(ctx context.Context, userID, sessionID string) error {
	if strings.TrimSpace(userID) == "" {
		return newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	if strings.TrimSpace(sessionID) == "" {
		return newError(ErrorInvalidArgument, "missing_session_id", nil)
	}
	_, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return newError(ErrorInternal, "session_read_error", err)
	}
	if !found {
		return newError(ErrorNotFound, "session_not_found", nil)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return newError(ErrorInternal, "session_delete_error", err)
	}
	s.logger.Info("session deleted", "sessionId", sessionID)
	return nil
}

// ListSessions returns the caller's sessions, newest-updated first, capped at
// 50, each reduced to a summary with a preview of its last message.
func (s *AssistantService) ListSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, newError(ErrorInternal, "session_list_error", err)
	}
	summaries := make([]domain.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		last := ""
		if n := len(session.Messages); n > 0 {
			last = truncateRunes(session.Messages[n-1].Content, lastMessagePreviewLen)
		}
		summaries = append(summaries, domain.SessionSummary{
			SessionID:    session.SessionID,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
			MessageCount: len(session.Messages),
			LastMessage:  last,
		})
	}
	s.logger.Info("sessions listed", "userId", userID, "count", len(summaries))
	return summaries, nil
}

// GetSessionDetail returns a full transcript, owner-only.
func (s *AssistantService) GetSessionDetail(ctx context.Context, userID, sessionID string) (SessionDetail, error) {
	if strings.TrimSpace(userID) == "" {
		return SessionDetail{}, newError(ErrorUnauthenticated, "missing_caller", nil)
	}
	if strings.TrimSpace(sessionID) == "" {
		return SessionDetail{}, newError(ErrorInvalidArgument, "missing_session_id", nil)
	}
	session, found, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return SessionDetail{}, newError(ErrorInternal, "session_read_error", err)
	}
	if !found {
		return SessionDetail{}, newError(ErrorNotFound, "session_not_found", nil)
	}
	if session.UserID != userID {
		return SessionDetail{}, newError(ErrorPermissionDenied, "session_owner_mismatch", nil)
	}
	messages := session.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	return SessionDetail{
		SessionID: session.SessionID,
		Messages:  messages,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
