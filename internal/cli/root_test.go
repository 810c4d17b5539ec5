package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/FranksOps/scout/internal/report"
)

type stubResearcher struct {
	topics []string
}

func (s *stubResearcher) Research(ctx context.Context, topic string) *report.Result {
	s.topics = append(s.topics, topic)
	return report.New(topic, "Stub report for "+topic, []string{"https://src.example"}, false)
}

func TestInteractiveLoop(t *testing.T) {
	stub := &stubResearcher{}
	in := strings.NewReader("first topic\nsecond topic\n\n")
	var out bytes.Buffer

	if err := interactiveLoop(context.Background(), stub, in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stub.topics) != 2 {
		t.Fatalf("expected 2 research calls, got %v", stub.topics)
	}
	if stub.topics[0] != "first topic" || stub.topics[1] != "second topic" {
		t.Errorf("unexpected topics: %v", stub.topics)
	}
	if !strings.Contains(out.String(), "Stub report for first topic") {
		t.Errorf("expected report printed:\n%s", out.String())
	}
}

func TestInteractiveLoop_EOF(t *testing.T) {
	stub := &stubResearcher{}
	var out bytes.Buffer

	if err := interactiveLoop(context.Background(), stub, strings.NewReader(""), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.topics) != 0 {
		t.Errorf("expected no research calls, got %v", stub.topics)
	}
}

func TestResearchOnce_RejectsEmptyTopic(t *testing.T) {
	var out bytes.Buffer
	if err := researchOnce(context.Background(), &stubResearcher{}, "   ", &out); err == nil {
		t.Fatal("expected error for blank topic")
	}
}

func TestResearchOnce_TrimsTopic(t *testing.T) {
	stub := &stubResearcher{}
	var out bytes.Buffer

	if err := researchOnce(context.Background(), stub, "  spaced topic  ", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.topics) != 1 || stub.topics[0] != "spaced topic" {
		t.Errorf("expected trimmed topic, got %v", stub.topics)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("expected version output, got %q", out.String())
	}
}
