package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"todosync/internal/core/port"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	geminiTimeout      = 60 * time.Second
)

var ErrEmptyCompletion = errors.New("model returned no text")

// GeminiGenerator produces summaries through the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

type settings struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*settings)

func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = strings.TrimRight(url, "/") }
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) { s.httpClient = client }
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string, opts ...Option) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	s := &settings{httpClient: &http.Client{Timeout: geminiTimeout}}
	for _, opt := range opts {
		opt(s)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  s.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: s.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

var _ port.SummaryGenerator = (*GeminiGenerator)(nil)

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", ErrEmptyCompletion
	}

	return summary, nil
}
