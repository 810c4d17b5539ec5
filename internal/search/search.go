package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single ranked item returned by a search provider. Order within
// a result slice is the provider's relevance order.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Response is everything a provider returns for one query: the ranked
// results plus the provider's direct answer when it has one.
type Response struct {
	Results []Result
	Answer  string
}

// Provider abstracts a web-search backend that can return ranked results for
// a query. Implementations may use official APIs or other mechanisms. The
// limit parameter caps the number of results returned.
type Provider interface {
	Search(ctx context.Context, query string, limit int) (Response, error)
}

// SearchError wraps a transport, authentication, or provider failure. The
// orchestrator treats it as recoverable and continues with zero results.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// FormatResults renders results as a single text block suitable for direct
// inclusion in a prompt. The optional answer string, when non-empty, is
// appended as a quick answer.
func FormatResults(results []Result, answer string) string {
	if len(results) == 0 && answer == "" {
		return "No results found."
	}

	var b strings.Builder
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		snippet := r.Snippet
		if snippet == "" {
			snippet = "No description"
		}
		fmt.Fprintf(&b, "Result %d:\nTitle: %s\nURL: %s\nSnippet: %s\n\n", i+1, title, r.URL, snippet)
	}
	if answer != "" {
		fmt.Fprintf(&b, "Quick Answer:\n%s\n", answer)
	}
	return strings.TrimRight(b.String(), "\n")
}
