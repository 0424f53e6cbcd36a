package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/stratify-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/stratify-cli/internal/config"
	"github.com/KaramelBytes/stratify-cli/internal/table"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
	"github.com/spf13/cobra"
)

// aiFlags are shared by analyze and chat.
type aiFlags struct {
	viewFlags
	provider   string
	model      string
	maxTokens  int
	timeoutSec int
	dryRun     bool
	stream     bool
}

func (f *aiFlags) bind(cmd *cobra.Command) {
	f.viewFlags.bind(cmd)
	cmd.Flags().StringVar(&f.provider, "provider", "", "AI provider: openrouter | gemini | ollama (default from config)")
	cmd.Flags().StringVar(&f.model, "model", "", "model name (default from config)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "maximum response tokens (default from config)")
	cmd.Flags().IntVar(&f.timeoutSec, "timeout", 180, "request timeout in seconds")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "build the prompt and print a token breakdown without calling the API")
	cmd.Flags().BoolVar(&f.stream, "stream", false, "stream responses if supported by the provider")
}

func (f *aiFlags) request(c *cfgpkg.Global, msgs []ai.Message) ai.GenerateRequest {
	maxTokens := f.maxTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	return ai.GenerateRequest{
		Model:       c.Model(f.provider, f.model),
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: c.Temperature,
	}
}

func (f *aiFlags) context() (context.Context, context.CancelFunc) {
	sec := f.timeoutSec
	if sec <= 0 {
		sec = 180
	}
	return context.WithTimeout(context.Background(), time.Duration(sec)*time.Second)
}

// promptRows caps the configured row count at the prompt's own limit.
func promptRows(configured, limit int) int {
	if configured <= 0 || configured > limit {
		return limit
	}
	return configured
}

// limitRows trims rows to the configured sample size for AI prompts.
func limitRows(rows []table.Row, n int) []table.Row {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// printDryRun prints the estimated tokens per message and the prompt itself.
func printDryRun(w io.Writer, req ai.GenerateRequest) {
	sections := make([]utils.Section, len(req.Messages))
	for i, m := range req.Messages {
		sections[i] = utils.Section{Label: m.Role, Text: m.Content}
	}
	counts, total := utils.TokenBreakdown(sections)
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = fmt.Sprintf("%s≈%d", s.Label, counts[i])
	}
	fmt.Fprintf(w, "Tokens: total≈%d (%s)\n", total, strings.Join(parts, ", "))
	fmt.Fprintf(w, "Model: %s, max tokens: %d\n", req.Model, req.MaxTokens)
	fmt.Fprintln(w, "\n--dry-run: no API call will be made. Prompt preview below --")
	for _, m := range req.Messages {
		fmt.Fprintf(w, "[%s]\n%s\n\n", strings.ToUpper(m.Role), m.Content)
	}
}

type streamingOptions struct {
	Enabled     bool
	Writer      io.Writer
	DeltaWriter io.Writer
}

// handleStreaming streams into DeltaWriter when enabled and supported and
// returns the full text. handled is false when the caller should fall back
// to a plain request.
func handleStreaming(ctx context.Context, runtime ai.Runtime, req ai.GenerateRequest, opts streamingOptions) (string, bool, error) {
	if !opts.Enabled {
		return "", false, nil
	}
	logWriter := opts.Writer
	if logWriter == nil {
		logWriter = os.Stdout
	}
	deltaWriter := opts.DeltaWriter
	if deltaWriter == nil {
		deltaWriter = os.Stdout
	}
	sr, ok := runtime.(ai.StreamRuntime)
	if !ok {
		fmt.Fprintln(logWriter, "⚠ Streaming not supported for this provider; falling back to non-streaming.")
		return "", false, nil
	}
	var full strings.Builder
	if err := sr.GenerateStream(ctx, req, func(delta string) {
		full.WriteString(delta)
		fmt.Fprint(deltaWriter, delta)
	}); err != nil {
		return "", true, fmt.Errorf("streaming generation failed: %w", err)
	}
	fmt.Fprintln(logWriter)
	return full.String(), true, nil
}

// generate runs req against runtime, streaming when asked, and returns the
// response text.
func generate(ctx context.Context, w io.Writer, runtime ai.Runtime, req ai.GenerateRequest, stream bool) (string, error) {
	text, handled, err := handleStreaming(ctx, runtime, req, streamingOptions{Enabled: stream, Writer: w, DeltaWriter: w})
	if err != nil {
		return "", explainAIError(err, req.Model)
	}
	if handled {
		return text, nil
	}
	resp, err := runtime.Generate(ctx, req)
	if err != nil {
		return "", explainAIError(err, req.Model)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no content returned from model")
	}
	return resp.Text(), nil
}

// explainAIError wraps provider failures with a next step for the user.
func explainAIError(err error, model string) error {
	var (
		brErr *ai.BadRequestError
		sErr  *ai.ServerError
		nfErr *ai.ModelNotFoundError
	)
	switch {
	case errors.As(err, &nfErr):
		return fmt.Errorf("model not found (%s): %w", model, err)
	case errors.As(err, &brErr):
		return fmt.Errorf("request invalid. Try fewer rows (ai_sample_rows) or a smaller --max-tokens: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	}
	if hint := ai.Hint(err); hint != "" {
		return fmt.Errorf("%w (hint: %s)", err, hint)
	}
	return fmt.Errorf("generation failed: %w", err)
}
