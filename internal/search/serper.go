package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
)

const defaultSerperURL = "https://google.serper.dev/search"

// Serper queries the Serper.dev Google search API. It holds no per-call
// state and is safe for concurrent use.
type Serper struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// SerperOption configures a Serper client.
type SerperOption func(*Serper)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) SerperOption {
	return func(s *Serper) { s.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client, e.g. to change the timeout.
func WithHTTPClient(c *http.Client) SerperOption {
	return func(s *Serper) { s.client = c }
}

// NewSerper constructs a Serper search provider.
func NewSerper(apiKey string, opts ...SerperOption) *Serper {
	s := &Serper{
		apiKey:  apiKey,
		baseURL: defaultSerperURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
	AnswerBox struct {
		Snippet string `json:"snippet"`
		Answer  string `json:"answer"`
	} `json:"answerBox"`
}

// Search posts a query to Serper and returns the organic results in rank
// order plus the answer box when present. A single attempt is made per
// call; any transport, authentication, or decoding failure is returned as
// a *SearchError.
func (s *Serper) Search(ctx context.Context, query string, limit int) (Response, error) {
	if limit < 1 {
		return Response{}, &SearchError{Query: query, Err: fmt.Errorf("limit must be >= 1, got %d", limit)}
	}
	if s.apiKey == "" {
		return Response{}, &SearchError{Query: query, Err: errors.New("serper API key is missing")}
	}

	payload, err := json.Marshal(serperRequest{Q: query, Num: limit})
	if err != nil {
		return Response{}, &SearchError{Query: query, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Response{}, &SearchError{Query: query, Err: err}
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordSearch("error", time.Since(start))
		return Response{}, &SearchError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	metrics.RecordSearch(strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Response{}, &SearchError{
			Query: query,
			Err:   fmt.Errorf("serper http %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Response{}, &SearchError{Query: query, Err: fmt.Errorf("decoding response: %w", err)}
	}

	results := make([]Result, 0, len(decoded.Organic))
	for _, r := range decoded.Organic {
		results = append(results, Result{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
		if len(results) >= limit {
			break
		}
	}

	answer := decoded.AnswerBox.Snippet
	if answer == "" {
		answer = decoded.AnswerBox.Answer
	}

	return Response{Results: results, Answer: answer}, nil
}

// SearchFormatted runs the same query but returns one prompt-ready text
// block, including the answer box when the provider supplies one.
func (s *Serper) SearchFormatted(ctx context.Context, query string, limit int) (string, error) {
	resp, err := s.Search(ctx, query, limit)
	if err != nil {
		return "", err
	}
	return FormatResults(resp.Results, resp.Answer), nil
}
