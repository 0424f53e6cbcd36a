package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
	"github.com/KaramelBytes/stratify-cli/internal/table"
)

type stubRuntime struct {
	text string
	err  error
}

func (s stubRuntime) Generate(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Role: "assistant", Content: s.text}}}}, nil
}

type stubStreamRuntime struct {
	called int
	err    error
}

func (s *stubStreamRuntime) Generate(context.Context, ai.GenerateRequest) (*ai.GenerateResponse, error) {
	return nil, nil
}

func (s *stubStreamRuntime) GenerateStream(ctx context.Context, req ai.GenerateRequest, onDelta func(string)) error {
	s.called++
	onDelta("chunk")
	onDelta("-two")
	return s.err
}

func TestHandleStreamingHappyPath(t *testing.T) {
	runtime := &stubStreamRuntime{}
	buf := &bytes.Buffer{}
	delta := &bytes.Buffer{}

	text, handled, err := handleStreaming(context.Background(), runtime, ai.GenerateRequest{}, streamingOptions{
		Enabled:     true,
		Writer:      buf,
		DeltaWriter: delta,
	})
	if err != nil {
		t.Fatalf("handleStreaming returned error: %v", err)
	}
	if !handled {
		t.Fatal("expected streaming to be handled")
	}
	if runtime.called != 1 {
		t.Fatalf("expected stream runtime to be invoked once, got %d", runtime.called)
	}
	if got := delta.String(); got != "chunk-two" {
		t.Fatalf("expected delta output, got %q", got)
	}
	if text != "chunk-two" {
		t.Fatalf("expected collected text, got %q", text)
	}
}

func TestHandleStreamingFallback(t *testing.T) {
	buf := &bytes.Buffer{}
	_, handled, err := handleStreaming(context.Background(), stubRuntime{}, ai.GenerateRequest{}, streamingOptions{
		Enabled: true,
		Writer:  buf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handled {
		t.Fatal("expected fallback to non-streaming")
	}
	if out := buf.String(); !strings.Contains(out, "Streaming not supported") {
		t.Fatalf("expected fallback message, got %q", out)
	}
}

func TestHandleStreamingErrorPropagation(t *testing.T) {
	runtime := &stubStreamRuntime{err: errors.New("fail")}
	_, handled, err := handleStreaming(context.Background(), runtime, ai.GenerateRequest{}, streamingOptions{
		Enabled:     true,
		Writer:      &bytes.Buffer{},
		DeltaWriter: &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected error from streaming runtime")
	}
	if !handled {
		t.Fatal("expected handled to be true even on error")
	}
}

func TestGenerateFallsBackToPlainRequest(t *testing.T) {
	buf := &bytes.Buffer{}
	text, err := generate(context.Background(), buf, stubRuntime{text: "hello"}, ai.GenerateRequest{Model: "m"}, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateExplainsProviderErrors(t *testing.T) {
	auth := &ai.AuthError{APIError: &ai.APIError{StatusCode: 401, Message: "bad key"}}
	_, err := generate(context.Background(), &bytes.Buffer{}, stubRuntime{err: auth}, ai.GenerateRequest{Model: "m"}, false)
	if err == nil {
		t.Fatal("expected error")
	}
	var target *ai.AuthError
	if !errors.As(err, &target) {
		t.Fatalf("expected wrapped AuthError, got %v", err)
	}
	if !strings.Contains(err.Error(), "hint:") {
		t.Fatalf("expected a hint, got %q", err.Error())
	}
}

func TestPromptRows(t *testing.T) {
	cases := []struct{ configured, limit, want int }{
		{0, 50, 50},
		{10, 50, 10},
		{500, 50, 50},
		{-1, 100, 100},
	}
	for _, c := range cases {
		if got := promptRows(c.configured, c.limit); got != c.want {
			t.Fatalf("promptRows(%d, %d) = %d, want %d", c.configured, c.limit, got, c.want)
		}
	}
}

func TestPrintDryRunShowsBreakdown(t *testing.T) {
	buf := &bytes.Buffer{}
	printDryRun(buf, ai.GenerateRequest{
		Model:     "m",
		MaxTokens: 100,
		Messages:  []ai.Message{{Role: "system", Content: "abcd"}, {Role: "user", Content: strings.Repeat("x", 40)}},
	})
	out := buf.String()
	for _, want := range []string{"Tokens: total≈11", "system≈1", "user≈10", "[USER]", "--dry-run"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderAnalysisDrawsCharts(t *testing.T) {
	rows := []table.Row{
		{"region": table.Text("North")},
		{"region": table.Text("North")},
		{"region": table.Text("South")},
	}
	text := "**Summary**\n\n* two regions\n```json\n" +
		`[{"type":"bar","title":"By region","xCol":"region"},{"type":"ticket","title":"Rows"}]` +
		"\n```"
	out := renderAnalysis(ai.SplitAnalysis(text), rows, 10)
	for _, want := range []string{"**Summary**", "* two regions", "By region (bar)", "North", "Rows (ticket)", "  3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestChatHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")
	h, err := loadChatHistory(path)
	if err != nil || len(h) != 0 {
		t.Fatalf("missing file should be empty history, got %v %v", h, err)
	}
	h = append(h, ai.ChatMessage{Sender: "user", Text: "q"}, ai.ChatMessage{Sender: "assistant", Text: "a"})
	if err := saveChatHistory(path, h); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := loadChatHistory(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].Text != "a" {
		t.Fatalf("unexpected history %+v", got)
	}
}
