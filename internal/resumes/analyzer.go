package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campushub/backend/config"
)

// ErrAnalyzerUnavailable is returned when the upstream AI endpoint cannot be
// reached or responds with a non-2xx status.
var ErrAnalyzerUnavailable = errors.New("resume analyzer unavailable")

// Analyzer produces a structured analysis of resume text.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, targetRole string) (json.RawMessage, error)
}

const systemPrompt = `You are a resume reviewer for students applying to internships and entry-level roles. ` +
	`Respond with a JSON object containing: "score" (0-100), "strengths" (array of strings), ` +
	`"weaknesses" (array of strings), and "suggestions" (array of strings). Respond with JSON only.`

// HTTPAnalyzer proxies resume text to an OpenAI-compatible chat completions
// endpoint and returns the model's JSON analysis verbatim.
type HTTPAnalyzer struct {
	cfg    config.AnalyzerConfig
	client *http.Client
}

// NewHTTPAnalyzer creates an analyzer against cfg.Endpoint.
func NewHTTPAnalyzer(cfg config.AnalyzerConfig) *HTTPAnalyzer {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAnalyzer{cfg: cfg, client: &http.Client{Timeout: timeout}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Analyze sends the resume to the completion endpoint and returns the model's
// analysis. When the model replies with valid JSON it is passed through
// unchanged; free-text replies are wrapped in {"analysis": "..."}.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, resumeText, targetRole string) (json.RawMessage, error) {
	user := "Analyze the following resume."
	if targetRole != "" {
		user = fmt.Sprintf("Analyze the following resume for a %q role.", targetRole)
	}
	user += "\n\n" + resumeText

	body, err := json.Marshal(chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d", ErrAnalyzerUnavailable, resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerUnavailable, err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrAnalyzerUnavailable)
	}

	content := out.Choices[0].Message.Content
	if json.Valid([]byte(content)) {
		return json.RawMessage(content), nil
	}
	wrapped, err := json.Marshal(map[string]string{"analysis": content})
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}
