// Package executor adapts an OpenAI-compatible chat-completions endpoint to
// the StageExecutor port. The backend is treated as opaque generative text:
// responses that parse as JSON become structured payloads, everything else is
// carried as raw text.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dealnexus/discovery/internal/config"
	"github.com/dealnexus/discovery/internal/core/agents"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

const chatCompletionsPath = "/chat/completions"

// Client is an HTTP stage executor against an OpenAI-compatible endpoint.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	promptsDir string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates an executor client from the process configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.ExecutorBaseURL, "/"),
		model:      cfg.ExecutorModel,
		apiKey:     cfg.APIKey(),
		promptsDir: cfg.PromptsDir,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second,
		},
		now: time.Now,
	}
}

// Configured reports whether the endpoint and credentials are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Execute runs one stage. Failures are returned as data on the outcome.
func (c *Client) Execute(ctx context.Context, stageID string, stageCtx *secondary.StageContext) *secondary.StageOutcome {
	content, err := c.complete(ctx, c.prompt(stageID), stageInput(stageCtx))
	if err != nil {
		return &secondary.StageOutcome{
			Status:      "error",
			Err:         err.Error(),
			CompletedAt: c.now().UTC().Format(time.RFC3339),
		}
	}

	outcome := &secondary.StageOutcome{
		Status:      "completed",
		CompletedAt: c.now().UTC().Format(time.RFC3339),
	}

	// Synthesis produces the client-facing document; it is never treated as
	// structured data.
	if stageID == agents.Synthesis {
		outcome.Raw = content
		return outcome
	}

	stripped := stripFences(content)
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripped), &payload); err == nil {
		outcome.Payload = payload
	} else {
		outcome.Raw = content
	}
	return outcome
}

// AssessSentiment runs the independent sentiment call over the transcript.
func (c *Client) AssessSentiment(ctx context.Context, transcript string) (*secondary.Sentiment, error) {
	content, err := c.complete(ctx, sentimentPrompt, transcript)
	if err != nil {
		return nil, err
	}

	var sentiment secondary.Sentiment
	if err := json.Unmarshal([]byte(stripFences(content)), &sentiment); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	return &sentiment, nil
}

// Wire types for the chat-completions API.

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// complete posts one chat completion. Transport errors and 5xx responses get
// a single retry; 4xx responses are content rejections and are not retried.
func (c *Client) complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	content, err := c.post(ctx, reqBody)
	if err != nil && retryable(err) {
		content, err = c.post(ctx, reqBody)
	}
	return content, err
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func retryable(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

func (c *Client) post(ctx context.Context, reqBody []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &transientError{fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transientError{fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode >= 500 {
		return "", &transientError{fmt.Errorf("backend error: %s", resp.Status)}
	}
	if resp.StatusCode != http.StatusOK {
		var errResp chatResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != nil {
			return "", fmt.Errorf("backend rejected request (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return "", fmt.Errorf("backend rejected request: %s", resp.Status)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("backend returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// stageInput serializes the context bundle into the user message.
func stageInput(stageCtx *secondary.StageContext) string {
	bundle := map[string]any{
		"client_context": stageCtx.ClientContext,
		"transcript":     stageCtx.Transcript,
	}
	if stageCtx.DetectedIndustry != "" {
		bundle["detected_industry"] = stageCtx.DetectedIndustry
	}
	if len(stageCtx.IndustryKPIs) > 0 {
		bundle["industry_kpis"] = stageCtx.IndustryKPIs
	}
	if len(stageCtx.BaselineMetrics) > 0 {
		bundle["baseline_metrics"] = stageCtx.BaselineMetrics
	}
	if len(stageCtx.PreviousOutputs) > 0 {
		bundle["previous_outputs"] = stageCtx.PreviousOutputs
	}
	if stageCtx.Sentiment != nil {
		bundle["sentiment"] = stageCtx.Sentiment
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return stageCtx.Transcript
	}
	return string(data)
}

// stripFences removes a surrounding Markdown code fence, with or without a
// language tag, so fenced JSON answers still parse.
func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Ensure Client implements the port.
var _ secondary.StageExecutor = (*Client)(nil)
