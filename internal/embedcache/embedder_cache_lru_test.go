package embedcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	batches [][]string
	err     error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, texts)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (c *countingEmbedder) ModelName() string { return "fake" }

func TestLruEmbedderBatchesMisses(t *testing.T) {
	next := &countingEmbedder{}
	e := WrapLruCacheToEmbedder(next, 16, time.Minute)

	first, err := e.Embed(context.Background(), []string{"a", "bb"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 1}, {2, 1}}, first)

	second, err := e.Embed(context.Background(), []string{"bb", "ccc", "a"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{2, 1}, {3, 1}, {1, 1}}, second)
	require.Equal(t, [][]string{{"a", "bb"}, {"ccc"}}, next.batches)

	_, err = e.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, next.batches, 2)
	require.Equal(t, "fake", e.ModelName())
}

func TestLruEmbedderReturnsCopies(t *testing.T) {
	e := WrapLruCacheToEmbedder(&countingEmbedder{}, 16, time.Minute)
	first, err := e.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	first[0][0] = 99

	again, err := e.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Equal(t, float32(1), again[0][0])
}

func TestLruEmbedderDisabled(t *testing.T) {
	next := &countingEmbedder{}
	require.Same(t, next, WrapLruCacheToEmbedder(next, 0, time.Minute))
	require.Same(t, next, WrapLruCacheToEmbedder(next, 8, 0))
}

func TestLruEmbedderPropagatesError(t *testing.T) {
	e := WrapLruCacheToEmbedder(&countingEmbedder{err: errors.New("down")}, 4, time.Minute)
	_, err := e.Embed(context.Background(), []string{"x"})
	require.Error(t, err)
}
