package agent

import (
	"fmt"
	"strings"

	"github.com/FranksOps/scout/internal/scraper"
	"github.com/FranksOps/scout/internal/search"
)

// maxContextChars bounds the combined scraped text fed into the synthesis
// prompt. Individual pages are already capped by the extractor; this caps
// the sum so long result lists stay inside provider limits.
const maxContextChars = 24000

const systemPrompt = `You are a professional research assistant. Your role is to:
1. Synthesize information from the provided search results and article text
2. Provide comprehensive, well-structured reports
3. Always cite your sources with URLs
4. Be objective and factual in your analysis
5. Acknowledge limitations or conflicting information

Format your final answer with clear sections, bullet points, and citations.`

// buildPrompt assembles the user prompt from the topic, the formatted
// search response, and the scraped page excerpts. Page text beyond the
// context budget is dropped, later (lower-ranked) pages first. The second
// return value lists the pages whose text made it into the prompt; pages
// squeezed out by the budget are not in it.
func buildPrompt(topic string, sr search.Response, pages []scraper.Page) (string, []scraper.Page) {
	var b strings.Builder

	fmt.Fprintf(&b, "Please research the following topic and provide a comprehensive report: %s\n\n", topic)

	if len(sr.Results) > 0 || sr.Answer != "" {
		b.WriteString("Search results:\n")
		b.WriteString(search.FormatResults(sr.Results, sr.Answer))
		b.WriteString("\n\n")
	} else {
		b.WriteString("No search results were available; rely on your own knowledge of the topic and say so in the report.\n\n")
	}

	var included []scraper.Page
	remaining := maxContextChars
	for _, p := range pages {
		if remaining <= 0 {
			break
		}
		content := p.Content
		if len(content) > remaining {
			content = scraper.Truncate(content, remaining)
		}
		if content == "" {
			continue
		}
		remaining -= len(content)

		title := p.Title
		if title == "" {
			title = p.URL
		}
		fmt.Fprintf(&b, "--- Source: %s (%s) ---\n%s\n\n", title, p.URL, content)
		included = append(included, p)
	}

	b.WriteString("Provide a well-structured report with key findings and citations.")
	return b.String(), included
}
