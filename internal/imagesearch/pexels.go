package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultPexelsBaseURL = "https://api.pexels.com"

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("image search is not configured")

// Searcher finds an illustrative image for a query. An empty URL with a nil
// error means nothing was found.
type Searcher interface {
	FindImage(ctx context.Context, query string) (string, error)
}

type PexelsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewPexelsClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *PexelsClient {
	if baseURL == "" {
		baseURL = DefaultPexelsBaseURL
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &PexelsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "pexels"),
	}
}

type searchResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

func (c *PexelsClient) FindImage(ctx context.Context, query string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pexels search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pexels search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode pexels response: %w", err)
	}
	if len(decoded.Photos) == 0 {
		c.logger.DebugContext(ctx, "No image found", "query", query)
		return "", nil
	}
	return decoded.Photos[0].Src.Large, nil
}
