package resumes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/backend/config"
)

func newAnalyzerServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.WriteHeader(status)
		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: content}})
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func analyzerFor(url string) *HTTPAnalyzer {
	return NewHTTPAnalyzer(config.AnalyzerConfig{
		Endpoint:   url,
		APIKey:     "test-key",
		Model:      "test-model",
		TimeoutSec: 5,
	})
}

func TestAnalyze_JSONPassthrough(t *testing.T) {
	srv := newAnalyzerServer(t, http.StatusOK, `{"score":72,"strengths":["clear projects"]}`)
	defer srv.Close()

	out, err := analyzerFor(srv.URL).Analyze(context.Background(), "resume text", "backend intern")
	require.NoError(t, err)

	var parsed struct {
		Score int `json:"score"`
	}
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, 72, parsed.Score)
}

func TestAnalyze_WrapsFreeText(t *testing.T) {
	srv := newAnalyzerServer(t, http.StatusOK, "Solid resume, add more metrics.")
	defer srv.Close()

	out, err := analyzerFor(srv.URL).Analyze(context.Background(), "resume text", "")
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, "Solid resume, add more metrics.", parsed["analysis"])
}

func TestAnalyze_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := analyzerFor(srv.URL).Analyze(context.Background(), "resume text", "")
	assert.ErrorIs(t, err, ErrAnalyzerUnavailable)
}

func TestAnalyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := analyzerFor(srv.URL).Analyze(context.Background(), "resume text", "")
	assert.ErrorIs(t, err, ErrAnalyzerUnavailable)
}
