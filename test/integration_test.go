//go:build integration

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/scout/internal/agent"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/llm"
	"github.com/FranksOps/scout/internal/scraper"
	"github.com/FranksOps/scout/internal/search"
)

// TestIntegration_FullPipeline runs search -> scrape -> synthesize against
// local stand-ins for Serper, the scraped sites, and OpenAI.
func TestIntegration_FullPipeline(t *testing.T) {
	// 1. Content servers: two scrapable pages and one that always fails.
	pageMux := http.NewServeMux()
	pageMux.HandleFunc("/good1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Good One</title></head><body><article>Solar output grew 24 percent last year.</article></body></html>`)
	})
	pageMux.HandleFunc("/good2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><main>Wind capacity also expanded.</main></body></html>`)
	})
	pageMux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})
	pages := httptest.NewServer(pageMux)
	defer pages.Close()

	// 2. Search API stand-in returning the three URLs above.
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"organic": []map[string]string{
				{"title": "Good One", "link": pages.URL + "/good1", "snippet": "solar stats"},
				{"title": "Broken", "link": pages.URL + "/broken", "snippet": "dead page"},
				{"title": "Good Two", "link": pages.URL + "/good2", "snippet": "wind stats"},
			},
			"answerBox": map[string]string{
				"snippet": "Renewable capacity grew worldwide in 2024.",
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer searchSrv.Close()

	// 3. LLM stand-in that echoes whether the scraped text reached it.
	var lastPrompt string
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		lastPrompt = req.Messages[len(req.Messages)-1].Content
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Renewables grew strongly."}}]}`))
	}))
	defer llmSrv.Close()

	logger := slog.Default()

	scr, err := scraper.New(scraper.Config{
		Fetch: scraper.FetchConfig{
			Timeout:     5 * time.Second,
			Fingerprint: fingerprint.ProfileGo,
		},
	}, logger)
	if err != nil {
		t.Fatalf("creating scraper: %v", err)
	}

	a := agent.New(
		search.NewSerper("test-key", search.WithBaseURL(searchSrv.URL)),
		scr,
		llm.NewOpenAI("test-key", "gpt-4", 0.1, llm.WithBaseURL(llmSrv.URL)),
		agent.WithMaxSources(3),
		agent.WithLogger(logger),
	)

	res := a.Research(context.Background(), "renewable energy growth")

	if res.Error {
		t.Fatalf("expected success, got failed result: %s", res.Report)
	}
	if res.Topic != "renewable energy growth" {
		t.Errorf("expected topic preserved, got %q", res.Topic)
	}
	if res.Report != "Renewables grew strongly." {
		t.Errorf("expected model report, got %q", res.Report)
	}

	if len(res.Sources) != 2 {
		t.Fatalf("expected 2 sources (broken page skipped), got %v", res.Sources)
	}
	for _, src := range res.Sources {
		if strings.HasSuffix(src, "/broken") {
			t.Errorf("failed scrape must not appear in sources: %s", src)
		}
	}

	if !strings.Contains(lastPrompt, "Solar output grew 24 percent") {
		t.Errorf("expected scraped article text in synthesis prompt")
	}
	if !strings.Contains(lastPrompt, "Wind capacity also expanded.") {
		t.Errorf("expected second article text in synthesis prompt")
	}
	if !strings.Contains(lastPrompt, "Renewable capacity grew worldwide in 2024.") {
		t.Errorf("expected answer box in synthesis prompt")
	}
}

// TestIntegration_SearchDown verifies graceful degradation when the search
// provider is unreachable.
func TestIntegration_SearchDown(t *testing.T) {
	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Best effort report."}}]}`))
	}))
	defer llmSrv.Close()

	// A search endpoint that is already closed.
	searchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := searchSrv.URL
	searchSrv.Close()

	scr, err := scraper.New(scraper.Config{
		Fetch: scraper.FetchConfig{Fingerprint: fingerprint.ProfileGo},
	}, slog.Default())
	if err != nil {
		t.Fatalf("creating scraper: %v", err)
	}

	a := agent.New(
		search.NewSerper("test-key", search.WithBaseURL(deadURL)),
		scr,
		llm.NewOpenAI("test-key", "gpt-4", 0.1, llm.WithBaseURL(llmSrv.URL)),
	)

	res := a.Research(context.Background(), "anything")

	if res.Error {
		t.Error("search outage must not fail the request")
	}
	if len(res.Sources) != 0 {
		t.Errorf("expected empty sources, got %v", res.Sources)
	}
	if res.Report != "Best effort report." {
		t.Errorf("expected degraded report, got %q", res.Report)
	}
}
