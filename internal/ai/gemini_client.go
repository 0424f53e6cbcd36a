package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const geminiURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	retry      Retry
}

// NewGeminiClient returns a client using the same retry defaults as Client.
func NewGeminiClient(apiKey string, httpTimeout time.Duration, retry Retry) *GeminiClient {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: httpTimeout},
		apiKey:     apiKey,
		baseURL:    geminiURL,
		retry:      retry.withDefaults(3, 500*time.Millisecond, 4*time.Second),
	}
}

// WithBaseURL overrides the endpoint root.
func (c *GeminiClient) WithBaseURL(u string) *GeminiClient {
	if u != "" {
		c.baseURL = strings.TrimRight(u, "/")
	}
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// toGemini maps chat messages: system messages become the system
// instruction and the assistant role is called "model".
func toGemini(req GenerateRequest) geminiRequest {
	var g geminiRequest
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			if g.SystemInstruction == nil {
				g.SystemInstruction = &geminiContent{}
			}
			g.SystemInstruction.Parts = append(g.SystemInstruction.Parts, geminiPart{Text: m.Content})
		case "assistant":
			g.Contents = append(g.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			g.Contents = append(g.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	cfg := map[string]any{}
	if req.MaxTokens > 0 {
		cfg["maxOutputTokens"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		cfg["temperature"] = req.Temperature
	}
	if len(cfg) > 0 {
		g.GenerationConfig = cfg
	}
	return g
}

// Generate sends one generateContent call, retrying 429 and 5xx.
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("api key is missing (set STRATIFY_API_KEY)")
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	payload, err := json.Marshal(toGemini(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(req.Model))

	delay := c.retry.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-goog-api-key", c.apiKey)
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if attempt < c.retry.MaxAttempts && isRetryableNetErr(err) {
				lastErr = err
				time.Sleep(c.retry.next(&delay))
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		out, retry, err := c.read(resp)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retry || attempt == c.retry.MaxAttempts {
			return nil, err
		}
		time.Sleep(c.retry.next(&delay))
	}
	return nil, lastErr
}

func (c *GeminiClient) read(resp *http.Response) (*GenerateResponse, bool, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, classifyAPIError(decodeAPIError(resp), resp)
	}
	var g geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	var text strings.Builder
	if len(g.Candidates) > 0 {
		for _, p := range g.Candidates[0].Content.Parts {
			text.WriteString(p.Text)
		}
	}
	return &GenerateResponse{
		Choices: []Choice{{Message: Message{Role: "assistant", Content: text.String()}}},
		Usage: Usage{
			PromptTokens:     g.UsageMetadata.PromptTokenCount,
			CompletionTokens: g.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      g.UsageMetadata.TotalTokenCount,
		},
		RequestID: extractRequestID(resp),
	}, false, nil
}
