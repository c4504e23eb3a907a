package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatServer answers chat completions with reply and records the last request.
func fakeChatServer(t *testing.T, status int, reply string) (*httptest.Server, <-chan *http.Request, <-chan chatRequest) {
	t.Helper()

	reqs := make(chan *http.Request, 1)
	bodies := make(chan chatRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		reqs <- r
		bodies <- body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, reqs, bodies
}

func testLLMConfig(baseURL string) LLMConfig {
	cfg := DefaultConfig().LLM
	cfg.APIKey = "sk-test"
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	return cfg
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIClient(LLMConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestOpenAIClient_Translate(t *testing.T) {
	t.Parallel()

	srv, reqs, bodies := fakeChatServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"  Climate change in Madrid \n"}}]}`)
	c, err := NewOpenAIClient(testLLMConfig(srv.URL + "/"))
	require.NoError(t, err)

	out, err := c.Translate(context.Background(), "Cambio climático en Madrid")
	require.NoError(t, err)
	assert.Equal(t, "Climate change in Madrid", out)

	r := <-reqs
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "/chat/completions", r.URL.Path)
	assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

	body := <-bodies
	assert.Equal(t, "gpt-3.5-turbo", body.Model)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, translatePrompt+"Cambio climático en Madrid", body.Messages[0].Content)
	assert.Nil(t, body.Temperature)
}

func TestOpenAIClient_Generate(t *testing.T) {
	t.Parallel()

	srv, _, bodies := fakeChatServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"Headline\n\nBody"}}]}`)
	c, err := NewOpenAIClient(testLLMConfig(srv.URL))
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "PROMPT", GenerateOptions{Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "Headline\n\nBody", out)

	body := <-bodies
	assert.Equal(t, "gpt-4-turbo", body.Model)
	assert.Equal(t, "PROMPT", body.Messages[0].Content)
	require.NotNil(t, body.Temperature)
	assert.InDelta(t, 0.7, *body.Temperature, 1e-9)
}

func TestOpenAIClient_Errors(t *testing.T) {
	t.Parallel()

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		srv, _, _ := fakeChatServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`)
		c, err := NewOpenAIClient(testLLMConfig(srv.URL))
		require.NoError(t, err)

		_, err = c.Generate(context.Background(), "PROMPT", GenerateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "slow down")
	})

	t.Run("no choices", func(t *testing.T) {
		t.Parallel()

		srv, _, _ := fakeChatServer(t, http.StatusOK, `{"choices":[]}`)
		c, err := NewOpenAIClient(testLLMConfig(srv.URL))
		require.NoError(t, err)

		_, err = c.Translate(context.Background(), "hola")
		assert.ErrorContains(t, err, "no choices")
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		srv, _, _ := fakeChatServer(t, http.StatusOK, `not json`)
		c, err := NewOpenAIClient(testLLMConfig(srv.URL))
		require.NoError(t, err)

		_, err = c.Translate(context.Background(), "hola")
		assert.ErrorContains(t, err, "failed to parse openai response")
	})
}
