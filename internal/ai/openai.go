package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xxxsen/hmobot/internal/model"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type openAIChatRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []openAIChatMsg `json:"messages"`
	Temperature float32         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Stream      bool            `json:"stream"`
}

type openAIChatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIEmbedRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// openAIClient speaks the chat-completions and embeddings wire format shared
// by OpenAI, Azure OpenAI and OpenRouter.
type openAIClient struct {
	name    string
	headers map[string]string
}

func newChatRequest(model string, msgs []model.Message, opts ChatOptions) openAIChatRequest {
	req := openAIChatRequest{
		Model:       model,
		Messages:    make([]openAIChatMsg, 0, len(msgs)),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openAIChatMsg{Role: string(m.Role), Content: m.Content})
	}
	return req
}

func (c *openAIClient) chat(ctx context.Context, endpoint string, body openAIChatRequest) (string, error) {
	var out openAIChatResponse
	if err := c.post(ctx, endpoint, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s response has no choices", c.name)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (c *openAIClient) embed(ctx context.Context, endpoint string, body openAIEmbedRequest) ([][]float32, error) {
	var out openAIEmbedResponse
	if err := c.post(ctx, endpoint, body, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(body.Input) {
		return nil, fmt.Errorf("%s returned %d embeddings for %d inputs", c.name, len(out.Data), len(body.Input))
	}
	vectors := make([][]float32, len(body.Input))
	for i, d := range out.Data {
		idx := d.Index
		if idx < 0 || idx >= len(vectors) || vectors[idx] != nil {
			idx = i
		}
		vectors[idx] = d.Embedding
	}
	return vectors, nil
}

func (c *openAIClient) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request: %v", ErrUnavailable, c.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s request failed: %s: %s", ErrUnavailable, c.name, resp.Status, strings.TrimSpace(string(raw)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type openAIProvider struct {
	apiKey  string
	baseURL string
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) client() *openAIClient {
	return &openAIClient{name: p.Name(), headers: map[string]string{"Authorization": "Bearer " + p.apiKey}}
}

func (p *openAIProvider) Chat(ctx context.Context, model string, msgs []model.Message, opts ChatOptions) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	return p.client().chat(ctx, endpoint, newChatRequest(model, msgs, opts))
}

func (p *openAIProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/embeddings"
	return p.client().embed(ctx, endpoint, openAIEmbedRequest{Model: model, Input: texts})
}

func newOpenAIProvider(args interface{}) (*openAIProvider, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIProvider{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
	}, nil
}

func createOpenAIFactory(args interface{}) (IChatProvider, error) {
	return newOpenAIProvider(args)
}

func createOpenAIEmbedFactory(args interface{}) (IEmbedProvider, error) {
	return newOpenAIProvider(args)
}

func init() {
	Register("openai", createOpenAIFactory)
	RegisterEmbed("openai", createOpenAIEmbedFactory)
}
