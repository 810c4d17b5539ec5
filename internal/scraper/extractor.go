package scraper

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxContentChars bounds the extracted text per page so a single large
// article cannot blow up the synthesis prompt.
const MaxContentChars = 8000

// Selectors that hold main article content, in priority order.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".content", ".main-content", ".article-content",
	"#content", "#main-content", "#article-content",
}

// Elements that never contribute readable text.
const unwantedSelector = "script, style, nav, header, footer, aside, iframe, noscript"

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n\s*\n+`)
)

// ExtractText parses HTML and returns the readable text of the page's main
// content, cleaned and truncated to MaxContentChars. It returns "" when the
// document cannot be parsed or contains no text.
func ExtractText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	doc.Find(unwantedSelector).Remove()

	var raw string
	for _, sel := range contentSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			raw = node.Text()
			break
		}
	}
	if raw == "" {
		raw = doc.Find("body").Text()
	}

	text := cleanText(raw)
	if len(text) > MaxContentChars {
		text = Truncate(text, MaxContentChars)
	}
	return text
}

// ExtractTitle returns the document's <title>, or "" if absent.
func ExtractTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// cleanText collapses runs of spaces and blank lines and trims each line.
func cleanText(s string) string {
	s = reSpaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimRight(s[:n], " \n")
}
