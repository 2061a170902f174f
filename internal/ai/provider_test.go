package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/hmobot/internal/model"
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{"openai", "azure", "gemini", "openrouter", " OpenAI "} {
		p, err := NewProvider(name, map[string]interface{}{"api_key": "k"})
		require.NoError(t, err, name)
		require.NotNil(t, p)
	}
	for _, name := range []string{"openai", "azure", "gemini"} {
		p, err := NewEmbedProvider(name, map[string]interface{}{"api_key": "k"})
		require.NoError(t, err, name)
		require.NotNil(t, p)
	}
	_, err := NewEmbedProvider("openrouter", map[string]interface{}{})
	require.Error(t, err)
	_, err = NewProvider("", nil)
	require.Error(t, err)
	_, err = NewProvider("openai", nil)
	require.Error(t, err)
}

func TestOpenAIChat(t *testing.T) {
	var got openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  שלום  "}}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider("openai", map[string]interface{}{"api_key": "secret", "base_url": srv.URL + "/v1/"})
	require.NoError(t, err)
	c := NewChatter(p, "gpt-4o", ChatOptions{Temperature: 0.2, MaxTokens: 512})
	reply, err := c.Chat(context.Background(), []model.Message{
		model.SystemMessage("sys"),
		model.UserMessage("hi"),
	})
	require.NoError(t, err)
	require.Equal(t, "שלום", reply)
	require.Equal(t, "gpt-4o", got.Model)
	require.Equal(t, 512, got.MaxTokens)
	require.InDelta(t, 0.2, got.Temperature, 1e-6)
	require.Equal(t, []openAIChatMsg{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}}, got.Messages)
}

func TestOpenAIEmbedBatchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"a", "b"}, req.Input)
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	p, err := NewEmbedProvider("openai", map[string]interface{}{"api_key": "secret", "base_url": srv.URL})
	require.NoError(t, err)
	e := NewEmbedder(p, "text-embedding-3-small")
	require.Equal(t, "text-embedding-3-small", e.ModelName())
	vectors, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestAzureDeploymentRouting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "key", r.Header.Get("api-key"))
		require.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		switch r.URL.Path {
		case "/openai/deployments/chat-dep/chat/completions":
			var req openAIChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Empty(t, req.Model)
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
		case "/openai/deployments/embed-dep/embeddings":
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	args := map[string]interface{}{"api_key": "key", "endpoint": srv.URL, "api_version": "2024-06-01"}
	cp, err := NewProvider("azure", args)
	require.NoError(t, err)
	reply, err := NewChatter(cp, "chat-dep", ChatOptions{}).Chat(context.Background(), []model.Message{model.UserMessage("x")})
	require.NoError(t, err)
	require.Equal(t, "ok", reply)

	ep, err := NewEmbedProvider("azure", args)
	require.NoError(t, err)
	vectors, err := NewEmbedder(ep, "embed-dep").Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{0.5}}, vectors)
}

func TestOpenRouterHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "https://example.org", r.Header.Get("HTTP-Referer"))
		require.Equal(t, "hmobot", r.Header.Get("X-Title"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"fine"}}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider("openrouter", map[string]interface{}{
		"api_key": "k", "base_url": srv.URL, "http_referer": "https://example.org", "x_title": "hmobot",
	})
	require.NoError(t, err)
	reply, err := p.Chat(context.Background(), "m", []model.Message{model.UserMessage("x")}, ChatOptions{})
	require.NoError(t, err)
	require.Equal(t, "fine", reply)
}

func TestUpstreamFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	p, err := NewProvider("openai", map[string]interface{}{"api_key": "k", "base_url": srv.URL})
	require.NoError(t, err)
	_, err = p.Chat(context.Background(), "m", []model.Message{model.UserMessage("x")}, ChatOptions{})
	require.ErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "rate limited")
}

func TestMissingCredentials(t *testing.T) {
	p, err := NewProvider("openai", map[string]interface{}{})
	require.NoError(t, err)
	_, err = p.Chat(context.Background(), "m", nil, ChatOptions{})
	require.ErrorIs(t, err, ErrUnavailable)

	ep, err := NewEmbedProvider("gemini", map[string]interface{}{})
	require.NoError(t, err)
	_, err = ep.Embed(context.Background(), "m", []string{"x"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestEmbedderCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	}))
	defer srv.Close()

	p, err := NewEmbedProvider("openai", map[string]interface{}{"api_key": "k", "base_url": srv.URL})
	require.NoError(t, err)
	_, err = NewEmbedder(p, "m").Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
}

func TestGeminiContents(t *testing.T) {
	system, contents := toGeminiContents([]model.Message{
		model.SystemMessage("be nice"),
		model.SystemMessage("kb"),
		model.UserMessage("q"),
		model.AssistantMessage("a"),
	})
	require.NotNil(t, system)
	require.Len(t, system.Parts, 2)
	require.Len(t, contents, 2)
	require.Equal(t, "user", contents[0].Role)
	require.Equal(t, "model", contents[1].Role)

	system, _ = toGeminiContents([]model.Message{model.UserMessage("q")})
	require.Nil(t, system)
}
