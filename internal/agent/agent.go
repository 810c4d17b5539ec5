package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FranksOps/scout/internal/config"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/llm"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/report"
	"github.com/FranksOps/scout/internal/scraper"
	"github.com/FranksOps/scout/internal/search"
)

// State identifies a stage of the research pipeline. A request walks
// Idle -> Searching -> Scraping -> Synthesizing -> Done; only a synthesis
// failure diverts it to Failed.
type State string

const (
	StateIdle         State = "idle"
	StateSearching    State = "searching"
	StateScraping     State = "scraping"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// PageScraper fetches one URL and extracts its readable text. A failed
// scrape is an empty Page, not an error.
type PageScraper interface {
	Scrape(ctx context.Context, url string) scraper.Page
}

// Agent drives the research pipeline: search the topic, scrape the top
// results, and synthesize a report from the gathered text. It holds no
// per-request state, so one Agent can serve concurrent topics.
type Agent struct {
	searcher   search.Provider
	scraper    PageScraper
	model      llm.Provider
	maxSources int
	logger     *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxSources bounds how many search results are scraped per topic.
func WithMaxSources(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxSources = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// New constructs an Agent from its three collaborators.
func New(searcher search.Provider, pages PageScraper, model llm.Provider, opts ...Option) *Agent {
	a := &Agent{
		searcher:   searcher,
		scraper:    pages,
		model:      model,
		maxSources: 5,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromConfig wires an Agent with the production collaborators: the
// Serper search client, the fingerprinted scraper, and the OpenAI model.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	searcher := search.NewSerper(cfg.SerperAPIKey)

	pages, err := scraper.New(scraper.Config{
		Fetch: scraper.FetchConfig{
			Timeout:     cfg.HTTPTimeout,
			Fingerprint: fingerprint.Profile(cfg.Fingerprint),
		},
		RespectRobots: cfg.RespectRobots,
		UserAgent:     "ScoutBot",
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating scraper: %w", err)
	}

	model := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.ModelName, cfg.Temperature)

	return New(searcher, pages, model, WithMaxSources(cfg.MaxSources), WithLogger(logger)), nil
}

// Research runs the full pipeline for one topic and always returns a
// result. Search and scrape failures degrade the result; only a synthesis
// failure marks it with Error=true. No stage failure surfaces as a Go error.
func (a *Agent) Research(ctx context.Context, topic string) *report.Result {
	state := StateIdle
	transition := func(next State) {
		a.logger.Debug("research state change", "topic", topic, "from", state, "to", next)
		state = next
	}

	transition(StateSearching)
	sr, err := a.searcher.Search(ctx, topic, a.maxSources)
	if err != nil {
		// Recoverable: synthesis can still proceed from the topic alone.
		a.logger.Warn("search failed, continuing with no sources", "topic", topic, "err", err)
		sr = search.Response{}
	}
	if len(sr.Results) > a.maxSources {
		sr.Results = sr.Results[:a.maxSources]
	}

	transition(StateScraping)
	var pages []scraper.Page
	seen := make(map[string]struct{}, len(sr.Results))
	for _, r := range sr.Results {
		if _, dup := seen[r.URL]; dup {
			a.logger.Debug("skipping duplicate result", "url", r.URL)
			continue
		}
		seen[r.URL] = struct{}{}

		page := a.scraper.Scrape(ctx, r.URL)
		if !page.OK() {
			a.logger.Debug("skipping unscrapable result", "url", r.URL)
			continue
		}
		pages = append(pages, page)
	}

	transition(StateSynthesizing)
	prompt, included := buildPrompt(topic, sr, pages)
	gen, err := a.model.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		transition(StateFailed)
		a.logger.Error("synthesis failed", "topic", topic, "err", err)
		metrics.RecordResearch("failed")
		return report.New(topic, fmt.Sprintf("Research failed: %v", err), nil, true)
	}

	transition(StateDone)

	// Only pages whose text reached the prompt are cited.
	sources := make([]string, 0, len(included))
	for _, p := range included {
		sources = append(sources, p.URL)
	}

	outcome := "ok"
	if len(sr.Results) > 0 && len(included) < len(sr.Results) {
		outcome = "degraded"
	}
	metrics.RecordResearch(outcome)

	return report.New(topic, gen.Text, sources, false)
}
