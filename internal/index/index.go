// Package index holds the in-memory similarity index over knowledge-base
// chunks. It is built once and is read-only afterwards, so concurrent
// searches need no locking.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/hmobot/internal/model"
)

const normEpsilon = 1e-8

// Embedder is the batch embedding function. Vectors come back in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Result struct {
	Chunk model.Chunk
	Score float32
}

type entry struct {
	chunk model.Chunk
	vec   []float32
}

type Index struct {
	embedder Embedder
	entries  []entry
}

// Build embeds every chunk in a single batch call and stores unit vectors.
func Build(ctx context.Context, chunks []model.Chunk, embedder Embedder) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	ix := &Index{embedder: embedder}
	if len(chunks) == 0 {
		return ix, nil
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	ix.entries = make([]entry, len(chunks))
	for i := range chunks {
		ix.entries[i] = entry{chunk: chunks[i], vec: normalize(vectors[i])}
	}
	logutil.GetLogger(ctx).Info("similarity index built", zap.Int("entries", len(ix.entries)))
	return ix, nil
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// SearchScored returns up to k chunks of the allowed providers, most similar
// first. Ties keep index order.
func (ix *Index) SearchScored(ctx context.Context, allowed []model.HMO, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}
	permitted := make(map[model.HMO]struct{}, len(allowed))
	for _, h := range allowed {
		permitted[h] = struct{}{}
	}
	candidates := make([]int, 0, len(ix.entries))
	for i, e := range ix.entries {
		if _, ok := permitted[e.chunk.HMO]; ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}
	q := normalize(vectors[0])

	results := make([]Result, len(candidates))
	for i, idx := range candidates {
		e := ix.entries[idx]
		results[i] = Result{Chunk: e.chunk, Score: dot(q, e.vec)}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k < len(results) {
		results = results[:k]
	}
	logger := logutil.GetLogger(ctx)
	for _, r := range results {
		logger.Debug("search match",
			zap.String("hmo", r.Chunk.HMO.String()),
			zap.String("topic", r.Chunk.Topic),
			zap.Float32("score", r.Score),
		)
	}
	return results, nil
}

// Search is SearchScored reduced to the chunk texts.
func (ix *Index) Search(ctx context.Context, allowed []model.HMO, query string, k int) ([]string, error) {
	results, err := ix.SearchScored(ctx, allowed, query, k)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return texts, nil
}

// normalize returns a unit-length copy of v. A numerically zero vector is
// copied unchanged.
func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm < normEpsilon {
		return out
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
