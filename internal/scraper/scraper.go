package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/FranksOps/scout/internal/metrics"
)

// Page is the outcome of scraping one URL. Content is empty when the scrape
// failed for any reason; callers skip such pages and continue.
type Page struct {
	URL     string
	Title   string
	Content string
}

// OK reports whether the scrape produced usable text.
func (p Page) OK() bool { return p.Content != "" }

// Config configures a Scraper.
type Config struct {
	Fetch FetchConfig
	// RespectRobots enables robots.txt checks before each fetch.
	RespectRobots bool
	// UserAgent is the product token matched against robots.txt groups.
	UserAgent string
}

// Scraper fetches pages and extracts their readable text. Failures never
// propagate as errors; they are logged and surfaced as an empty Page.
type Scraper struct {
	cfg     Config
	fetcher *Fetcher
	auditor *RobotsAuditor
	logger  *slog.Logger
}

// New creates a Scraper.
func New(cfg Config, logger *slog.Logger) (*Scraper, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "*"
	}

	fetcher, err := NewFetcher(cfg.Fetch)
	if err != nil {
		return nil, err
	}

	var auditor *RobotsAuditor
	if cfg.RespectRobots {
		auditor = NewRobotsAuditor(fetcher, logger)
	}

	return &Scraper{
		cfg:     cfg,
		fetcher: fetcher,
		auditor: auditor,
		logger:  logger,
	}, nil
}

// Scrape fetches the URL and returns its readable text. The returned Page
// has empty Content on invalid URLs, fetch errors, non-HTML responses, HTTP
// error statuses, robots.txt denial, or empty extraction.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) Page {
	page := Page{URL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.logger.Debug("skipping invalid url", "url", rawURL)
		return page
	}

	if s.auditor != nil {
		allowed, err := s.auditor.IsAllowed(ctx, rawURL, s.cfg.UserAgent)
		if err != nil {
			s.logger.Warn("error checking robots.txt", "url", rawURL, "err", err)
		} else if !allowed {
			s.logger.Debug("url blocked by robots.txt", "url", rawURL)
			metrics.RecordScrape(u.Hostname(), "robots_denied", 0)
			return page
		}
	}

	result := s.fetcher.Fetch(ctx, rawURL)

	status := strconv.Itoa(result.StatusCode)
	if result.Error != "" {
		status = "error"
	}
	metrics.RecordScrape(u.Hostname(), status, len(result.Body))

	if result.Error != "" {
		s.logger.Warn("fetch failed", "url", rawURL, "err", result.Error)
		return page
	}
	if result.StatusCode >= 400 {
		s.logger.Debug("skipping error response", "url", rawURL, "status", result.StatusCode)
		return page
	}
	if !isHTML(result.Headers) {
		s.logger.Debug("skipping non-html content", "url", rawURL)
		return page
	}

	page.Title = ExtractTitle(result.Body)
	page.Content = ExtractText(result.Body)
	if page.Content == "" {
		s.logger.Debug("no readable content extracted", "url", rawURL)
	}
	return page
}

func isHTML(headers map[string][]string) bool {
	vals := headers["Content-Type"]
	if len(vals) == 0 {
		// Some servers omit the header; let the parser decide.
		return true
	}
	ct := strings.ToLower(vals[0])
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}
