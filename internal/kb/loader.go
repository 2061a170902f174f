package kb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/hmobot/internal/filestore"
	"github.com/xxxsen/hmobot/internal/model"
)

// Supported reports whether name has an extension one of the parsers reads.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".md", ".markdown":
		return true
	}
	return false
}

// Parse picks the parser from the extension of name.
func Parse(name string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		doc, err = ParseMarkdown(data)
	case ".html", ".htm":
		doc, err = ParseHTML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%s: unsupported document type", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, data)
}

// LoadDir loads every supported file directly inside dir.
func LoadDir(ctx context.Context, dir string) ([]model.Chunk, error) {
	return LoadStore(ctx, filestore.NewLocal(dir))
}

// LoadStore parses every supported document of store, in key order, and
// returns the chunks of all documents. One malformed document fails the
// whole load.
func LoadStore(ctx context.Context, store filestore.Store) ([]model.Chunk, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("store", store.Type()))
	keys, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge base: %w", err)
	}

	var chunks []model.Chunk
	docs := 0
	for _, key := range keys {
		if !Supported(key) {
			continue
		}
		data, err := readAll(ctx, store, key)
		if err != nil {
			return nil, err
		}
		doc, err := Parse(key, data)
		if err != nil {
			logger.Error("failed to parse document", zap.String("file", key), zap.Error(err))
			return nil, err
		}
		docs++
		for _, ch := range doc.Chunks() {
			logger.Debug("chunk built",
				zap.String("hmo", ch.HMO.String()),
				zap.String("topic", ch.Topic),
				zap.Int("chars", len(ch.Text)),
			)
			chunks = append(chunks, ch)
		}
	}
	if docs == 0 {
		return nil, fmt.Errorf("no knowledge base documents found")
	}
	logger.Info("knowledge base loaded", zap.Int("documents", docs), zap.Int("chunks", len(chunks)))
	return chunks, nil
}

func readAll(ctx context.Context, store filestore.Store, key string) ([]byte, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
