package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	"github.com/rtzll/transcriptgrab/internal/apperr"
)

const summaryTemperature = 0.3

// ChatClient is the subset of the OpenAI SDK the AI wrapper needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model, system, user string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK. Any OpenAI-compatible
// endpoint works; the default base URL points at Groq.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a client for apiKey against baseURL. The SDK's
// own retries are disabled: a refused call surfaces immediately.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

// CreateChatCompletion sends a system and a user message.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(summaryTemperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from model")
	}
	return resp.Choices[0].Message.Content, nil
}

// AI talks to the completion endpoint on behalf of the summary cache. It
// implements summary.Completer.
type AI struct {
	client     ChatClient
	model      string
	timeout    time.Duration
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	clientOnce sync.Once
}

// AIOption customizes AI creation
type AIOption func(*AI)

// WithChatClient sets the client, skipping lazy initialization.
func WithChatClient(c ChatClient) AIOption {
	return func(ai *AI) { ai.client = c }
}

// WithRequestsPerMinute caps outgoing calls. Calls over the budget are
// refused, never queued. Zero disables the cap.
func WithRequestsPerMinute(n int) AIOption {
	return func(ai *AI) {
		if n <= 0 {
			ai.limiter = nil
			return
		}
		ai.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
}

// NewAI creates the completion wrapper. The SDK client is built on first
// use so commands that never summarize do not need an API key.
func NewAI(apiKey, baseURL, model string, timeout time.Duration, opts ...AIOption) *AI {
	ai := &AI{
		model:   model,
		timeout: timeout,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(ai)
	}
	return ai
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	ai.clientOnce.Do(func() {
		if ai.client == nil && ai.apiKey != "" {
			ai.client = NewOpenAIClient(ai.apiKey, ai.baseURL)
		}
	})
	if ai.client == nil {
		return ValidateAPIKey(ai.apiKey)
	}
	return nil
}

// Ready reports whether a client can be built, without calling the API.
func (ai *AI) Ready() error {
	return ai.ensureClient()
}

// Complete implements summary.Completer.
func (ai *AI) Complete(ctx context.Context, system, user string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}
	if ai.limiter != nil && !ai.limiter.Allow() {
		return "", apperr.New(apperr.KindRateLimit, "RATE_LIMITED", "Summary temporarily unavailable")
	}

	if ai.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.timeout)
		defer cancel()
	}

	content, err := ai.client.CreateChatCompletion(ctx, ai.model, system, user)
	if err != nil {
		if isRateLimited(err) {
			return "", apperr.Wrap(apperr.KindRateLimit, "RATE_LIMITED", "Summary temporarily unavailable", err)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("creating chat completion: %w", ctx.Err())
		}
		return "", apperr.Wrap(apperr.KindUpstream, "LLM_FAILED", "Failed to generate summary", err)
	}
	return content, nil
}

// isRateLimited reports a provider-side quota refusal.
func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// ValidateAPIKey checks that a completion API key is configured.
func ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return apperr.New(apperr.KindValidation, "MISSING_API_KEY",
			"LLM API key is required - set llm_api_key in config.toml or GROQ_API_KEY / OPENAI_API_KEY")
	}
	return nil
}
