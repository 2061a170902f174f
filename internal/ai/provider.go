package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/hmobot/internal/model"
)

var ErrUnavailable = errors.New("ai provider unavailable")

type ChatOptions struct {
	Temperature float32
	MaxTokens   int
}

type IChatProvider interface {
	Name() string
	Chat(ctx context.Context, model string, msgs []model.Message, opts ChatOptions) (string, error)
}

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// IChatter is a chat provider bound to a model and its sampling options.
type IChatter interface {
	Chat(ctx context.Context, msgs []model.Message) (string, error)
}

// IEmbedder is an embedding provider bound to a model. Vectors are returned
// in input order.
type IEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

type chatter struct {
	provider IChatProvider
	model    string
	opts     ChatOptions
}

func NewChatter(p IChatProvider, model string, opts ChatOptions) IChatter {
	return &chatter{provider: p, model: model, opts: opts}
}

func (c *chatter) Chat(ctx context.Context, msgs []model.Message) (string, error) {
	return c.provider.Chat(ctx, c.model, msgs, c.opts)
}

type embedder struct {
	provider IEmbedProvider
	model    string
}

func NewEmbedder(p IEmbedProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := e.provider.Embed(ctx, e.model, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%s returned %d embeddings for %d inputs", e.provider.Name(), len(vectors), len(texts))
	}
	return vectors, nil
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IChatProvider, error)

type EmbedProviderFactory func(args interface{}) (IEmbedProvider, error)

var (
	registry      = map[string]ProviderFactory{}
	embedRegistry = map[string]EmbedProviderFactory{}
)

func Register(name string, factory ProviderFactory) {
	key := normalizeName(name)
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func RegisterEmbed(name string, factory EmbedProviderFactory) {
	key := normalizeName(name)
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func NewProvider(name string, args interface{}) (IChatProvider, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported embedding provider: %s", name)
	}
	return factory(args)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
