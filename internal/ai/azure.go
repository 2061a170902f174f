package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/xxxsen/hmobot/internal/model"
)

const defaultAzureAPIVersion = "2024-02-01"

type azureConfig struct {
	APIKey     string `json:"api_key"`
	Endpoint   string `json:"endpoint"`
	APIVersion string `json:"api_version"`
}

// azureProvider addresses Azure OpenAI deployments. The model argument is
// the deployment name.
type azureProvider struct {
	apiKey     string
	endpoint   string
	apiVersion string
}

func (p *azureProvider) Name() string {
	return "azure"
}

func (p *azureProvider) deploymentURL(deployment, op string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		strings.TrimRight(p.endpoint, "/"),
		url.PathEscape(deployment),
		op,
		url.QueryEscape(p.apiVersion),
	)
}

func (p *azureProvider) client() *openAIClient {
	return &openAIClient{name: p.Name(), headers: map[string]string{"api-key": p.apiKey}}
}

func (p *azureProvider) Chat(ctx context.Context, model string, msgs []model.Message, opts ChatOptions) (string, error) {
	if p.apiKey == "" || p.endpoint == "" {
		return "", ErrUnavailable
	}
	body := newChatRequest("", msgs, opts)
	return p.client().chat(ctx, p.deploymentURL(model, "chat/completions"), body)
}

func (p *azureProvider) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if p.apiKey == "" || p.endpoint == "" {
		return nil, ErrUnavailable
	}
	return p.client().embed(ctx, p.deploymentURL(model, "embeddings"), openAIEmbedRequest{Input: texts})
}

func newAzureProvider(args interface{}) (*azureProvider, error) {
	cfg := &azureConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultAzureAPIVersion
	}
	return &azureProvider{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		endpoint:   strings.TrimSpace(cfg.Endpoint),
		apiVersion: version,
	}, nil
}

func init() {
	Register("azure", func(args interface{}) (IChatProvider, error) {
		return newAzureProvider(args)
	})
	RegisterEmbed("azure", func(args interface{}) (IEmbedProvider, error) {
		return newAzureProvider(args)
	})
}
