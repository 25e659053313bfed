package ai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialsphere/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		requests = append(requests, r.URL.Path+" "+string(raw))
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestGeminiGenerator_Generate(t *testing.T) {
	srv, requests := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"YES"},{"text":"\n"}]}}]}`)

	gen, err := NewGeminiGenerator(context.Background(), "test-key", srv.URL, srv.Client())
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), "test-model", "Is this fine?")
	require.NoError(t, err)
	assert.Equal(t, "YES\n", text)

	require.Len(t, *requests, 1)
	assert.Contains(t, (*requests)[0], "test-model:generateContent")
	assert.Contains(t, (*requests)[0], "Is this fine?")
}

func TestGeminiGenerator_NoCandidates(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusOK, `{"candidates":[]}`)

	gen, err := NewGeminiGenerator(context.Background(), "test-key", srv.URL, srv.Client())
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), "test-model", "anything")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGeminiGenerator_APIError(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)

	gen, err := NewGeminiGenerator(context.Background(), "test-key", srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), "test-model", "anything")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "generate content"))
}

func TestGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "", nil)
	assert.Error(t, err)
}

func TestGateway_ModerationFailsOpenOnAPIError(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusInternalServerError,
		`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`)

	gen, err := NewGeminiGenerator(context.Background(), "test-key", srv.URL, srv.Client())
	require.NoError(t, err)

	g := NewGateway(gen, Options{FailOpen: true, Timeout: 5 * time.Second})
	assert.True(t, g.Moderate(context.Background(), "hello"))
}

func TestNewFromConfig_WithoutKeyIsDisabled(t *testing.T) {
	cfg := &config.Config{AIModel: "m", AITimeout: time.Second, ModerationFailOpen: false}

	g, err := NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "m", g.Model())
	assert.Equal(t, CaptionFailed, g.GenerateCaption(context.Background(), "x"))
	assert.False(t, g.Moderate(context.Background(), "x"))
}
