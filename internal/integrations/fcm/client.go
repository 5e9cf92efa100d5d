package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"travel-social-functions/internal/domain"
	"travel-social-functions/internal/integrations/paramstore"
)

const (
	defaultSendURL = "https://fcm.googleapis.com/fcm/send"
	channelID      = "travel_social_app_channel"
)

// sendRequest is the FCM legacy HTTP send shape.
type sendRequest struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification sendNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type sendNotification struct {
	Title            string `json:"title"`
	Body             string `json:"body"`
	Image            string `json:"image,omitempty"`
	Sound            string `json:"sound"`
	AndroidChannelID string `json:"android_channel_id"`
	Badge            string `json:"badge"`
}

type sendResponse struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Results     []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fcm: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client sends device pushes through the FCM HTTP endpoint. The server key
// is fetched from Parameter Store on first use and cached for the process
// lifetime.
type Client struct {
	sendURL    string
	httpClient *http.Client
	getter     paramstore.Getter
	paramName  string

	keyOnce   sync.Once
	serverKey string
	keyErr    error
}

type Option func(*Client)

func WithSendURL(sendURL string) Option {
	return func(c *Client) {
		c.sendURL = strings.TrimSpace(sendURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(getter paramstore.Getter, paramName string, opts ...Option) (*Client, error) {
	if getter == nil {
		return nil, errors.New("fcm: paramstore getter must not be nil")
	}
	if strings.TrimSpace(paramName) == "" {
		return nil, errors.New("fcm: key parameter name must not be empty")
	}
	c := &Client{
		sendURL:    defaultSendURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     getter,
		paramName:  paramName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveServerKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.serverKey, c.keyErr = c.getter.GetParameter(ctx, c.paramName)
	})
	return c.serverKey, c.keyErr
}

// Send pushes one message with high priority, the app channel and default
// sound, and returns the provider message id.
func (c *Client) Send(ctx context.Context, msg domain.PushMessage) (string, error) {
	if msg.Token == "" {
		return "", errors.New("fcm: device token must not be empty")
	}

	serverKey, err := c.resolveServerKey(ctx)
	if err != nil {
		return "", fmt.Errorf("fcm: fetch server key: %w", err)
	}

	body, err := json.Marshal(sendRequest{
		To:       msg.Token,
		Priority: "high",
		Notification: sendNotification{
			Title:            msg.Title,
			Body:             msg.Body,
			Image:            msg.ImageURL,
			Sound:            "default",
			AndroidChannelID: channelID,
			Badge:            "1",
		},
		Data: msg.Data,
	})
	if err != nil {
		return "", fmt.Errorf("fcm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("fcm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+serverKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fcm: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.sendURL,
			Body:       string(buf),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("fcm: read response body: %w", err)
	}

	var payload sendResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("fcm: decode response: %w", err)
	}
	if len(payload.Results) == 0 {
		return "", errors.New("fcm: no results in response")
	}
	if payload.Results[0].Error != "" {
		return "", fmt.Errorf("fcm: delivery rejected: %s", payload.Results[0].Error)
	}
	if payload.Results[0].MessageID != "" {
		return payload.Results[0].MessageID, nil
	}
	return strconv.FormatInt(payload.MulticastID, 10), nil
}
