package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI calls the OpenAI chat completions API.
type OpenAI struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
}

// OpenAIOption configures an OpenAI client.
type OpenAIOption func(*OpenAI)

// WithBaseURL overrides the API base URL, mainly for tests and proxies.
func WithBaseURL(u string) OpenAIOption {
	return func(o *OpenAI) { o.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) { o.client = c }
}

// NewOpenAI constructs an OpenAI chat client. Synthesis calls can be slow,
// so the default timeout is generous.
func NewOpenAI(apiKey, model string, temperature float64, opts ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		apiKey:      apiKey,
		baseURL:     defaultOpenAIBaseURL,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate sends one chat completion request. A single attempt is made; any
// failure is returned as a *SynthesisError.
func (o *OpenAI) Generate(ctx context.Context, systemPrompt, userPrompt string) (Response, error) {
	if o.apiKey == "" {
		return Response{}, &SynthesisError{Model: o.model, Err: errors.New("openai API key is missing")}
	}

	payload, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: o.temperature,
	})
	if err != nil {
		return Response{}, &SynthesisError{Model: o.model, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Response{}, &SynthesisError{Model: o.model, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := o.client.Do(req)
	if err != nil {
		return Response{}, &SynthesisError{Model: o.model, Err: err}
	}
	defer resp.Body.Close()
	defer func() { metrics.SynthesisDuration.Observe(time.Since(start).Seconds()) }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Response{}, &SynthesisError{Model: o.model, Err: err}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Response{}, &SynthesisError{Model: o.model, Err: fmt.Errorf("http %d: decoding response: %w", resp.StatusCode, err)}
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return Response{}, &SynthesisError{Model: o.model, Err: fmt.Errorf("http %d: %s", resp.StatusCode, msg)}
	}

	if len(decoded.Choices) == 0 {
		return Response{}, &SynthesisError{Model: o.model, Err: errors.New("response contained no choices")}
	}

	return Response{
		Text:             decoded.Choices[0].Message.Content,
		Model:            o.model,
		PromptTokens:     decoded.Usage.PromptTokens,
		CompletionTokens: decoded.Usage.CompletionTokens,
	}, nil
}
