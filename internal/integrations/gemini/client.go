package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"travel-social-functions/internal/domain"
	"travel-social-functions/internal/integrations/paramstore"
)

// greeting is the fixed model-role turn that seeds every fresh chat right
// after the system prompt.
const greeting = "Xin chào! Tôi là trợ lý du lịch của bạn. Tôi có thể giúp gì cho bạn hôm nay?"

const (
	temperature     = 0.7
	maxOutputTokens = 2048
)

// Client drives the Gemini API. The underlying SDK client is created on the
// first Generate call, after the API key has been fetched from Parameter
// Store, and reused for the process lifetime.
type Client struct {
	getter    paramstore.Getter
	paramName string

	initOnce sync.Once
	client   *genai.Client
	initErr  error
}

func NewClient(getter paramstore.Getter, paramName string) (*Client, error) {
	if getter == nil {
		return nil, errors.New("gemini: paramstore getter must not be nil")
	}
	if strings.TrimSpace(paramName) == "" {
		return nil, errors.New("gemini: key parameter name must not be empty")
	}
	return &Client{getter: getter, paramName: paramName}, nil
}

func (c *Client) resolveClient(ctx context.Context) (*genai.Client, error) {
	c.initOnce.Do(func() {
		apiKey, err := c.getter.GetParameter(ctx, c.paramName)
		if err != nil {
			c.initErr = fmt.Errorf("gemini: fetch API key: %w", err)
			return
		}
		c.client, c.initErr = genai.NewClient(ctx, option.WithAPIKey(apiKey))
	})
	return c.client, c.initErr
}

// Generate runs one exchange against the named model. Each call builds a
// fresh chat seeded with the system prompt as the opening user turn, the
// fixed greeting as the opening model turn, then the trimmed history, and
// finally sends the new message.
func (c *Client) Generate(ctx context.Context, model, systemPrompt string, history []domain.ChatMessage, message string) (string, error) {
	if model == "" {
		return "", errors.New("gemini: model must not be empty")
	}

	client, err := c.resolveClient(ctx)
	if err != nil {
		return "", err
	}

	gm := client.GenerativeModel(model)
	gm.SetTemperature(temperature)
	gm.SetMaxOutputTokens(maxOutputTokens)

	chat := gm.StartChat()
	chat.History = seedHistory(systemPrompt, history)

	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini: send message: %w", err)
	}

	reply := extractText(resp)
	if reply == "" {
		return "", errors.New("gemini: empty response")
	}
	return reply, nil
}

func seedHistory(systemPrompt string, history []domain.ChatMessage) []*genai.Content {
	contents := []*genai.Content{
		{Role: domain.RoleUser, Parts: []genai.Part{genai.Text(systemPrompt)}},
		{Role: domain.RoleModel, Parts: []genai.Part{genai.Text(greeting)}},
	}
	for _, m := range history {
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return contents
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

// Close releases the underlying SDK client if one was created.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
