package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"travel-social-functions/internal/domain"
	"travel-social-functions/internal/integrations/paramstore"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// currentResponse is the minimal response shape of the current-conditions
// endpoint.
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("weather: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused OpenWeatherMap client for current conditions. The API
// key is fetched from Parameter Store on first use and cached for the
// process lifetime.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getter     paramstore.Getter
	paramName  string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(getter paramstore.Getter, paramName string, opts ...Option) (*Client, error) {
	if getter == nil {
		return nil, errors.New("weather: paramstore getter must not be nil")
	}
	if strings.TrimSpace(paramName) == "" {
		return nil, errors.New("weather: key parameter name must not be empty")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     getter,
		paramName:  paramName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = c.getter.GetParameter(ctx, c.paramName)
	})
	return c.apiKey, c.keyErr
}

// Current fetches conditions for a canonical city name in metric units with
// Vietnamese condition text. No retry: callers degrade gracefully on error.
func (c *Client) Current(ctx context.Context, city string) (domain.WeatherSnapshot, error) {
	if strings.TrimSpace(city) == "" {
		return domain.WeatherSnapshot{}, errors.New("weather: city must not be empty")
	}

	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: fetch API key: %w", err)
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", apiKey)
	query.Set("units", "metric")
	query.Set("lang", "vi")
	reqURL := strings.TrimRight(c.baseURL, "/") + "/weather?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return domain.WeatherSnapshot{}, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        reqURL,
			Body:       string(buf),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: read response body: %w", err)
	}

	var payload currentResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("weather: decode response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return domain.WeatherSnapshot{}, errors.New("weather: no conditions in response")
	}

	return domain.WeatherSnapshot{
		City:        payload.Name,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		Description: payload.Weather[0].Description,
		WindSpeed:   payload.Wind.Speed,
		Icon:        payload.Weather[0].Icon,
	}, nil
}
