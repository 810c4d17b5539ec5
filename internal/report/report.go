package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// Result is the stable output contract of a research request. It is
// assembled once, at formatting time, and never mutated afterwards.
type Result struct {
	ID        string    `json:"-"`
	Topic     string    `json:"topic"`
	Report    string    `json:"report"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
	// Error marks a failed synthesis. It is omitted from JSON when false.
	Error bool `json:"error,omitempty"`
}

// New assembles a Result. Sources must contain only URLs that contributed
// text to the report. The timestamp is captured here, not at query start.
func New(topic, reportText string, sources []string, failed bool) *Result {
	if sources == nil {
		sources = []string{}
	}
	return &Result{
		ID:        uuid.New().String(),
		Topic:     topic,
		Report:    reportText,
		Sources:   sources,
		Timestamp: time.Now().UTC(),
		Error:     failed,
	}
}

// WriteJSON writes the result to the provided writer in indented JSON.
// Timestamps serialize as RFC 3339.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

const textTmpl = `==================================================
RESEARCH REPORT: {{.Topic}}
==================================================
{{.Report}}

SOURCES
-------
{{- range $i, $src := .Sources}}
{{add $i 1}}. {{$src}}
{{- else}}
(none)
{{- end}}

Research completed at: {{.Timestamp.Format "2006-01-02T15:04:05Z07:00"}}
{{- if .Error}}
NOTE: this report is incomplete; synthesis failed.
{{- end}}
`

var reportTemplate = template.Must(template.New("textReport").Funcs(template.FuncMap{
	"add": func(a, b int) int { return a + b },
}).Parse(textTmpl))

// WriteText writes a human-readable rendering of the result.
func (r *Result) WriteText(w io.Writer) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
