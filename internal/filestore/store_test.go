package filestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("bee"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("ay"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	store, err := New("local", map[string]interface{}{"dir": dir})
	require.NoError(t, err)
	require.Equal(t, "local", store.Type())

	keys, err := store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.html", "b.md"}, keys)

	rc, err := store.Open(context.Background(), "b.md")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "bee", string(data))

	_, err = store.Open(context.Background(), "../etc/passwd")
	require.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	_, err := New("", nil)
	require.Error(t, err)
	_, err = New("ftp", map[string]interface{}{})
	require.Error(t, err)
	_, err = New("local", map[string]interface{}{})
	require.Error(t, err)
	_, err = New("s3", map[string]interface{}{})
	require.Error(t, err)
}

func TestS3Store(t *testing.T) {
	objects := map[string]string{
		"kb/dental.html":    "<h2>dental</h2>",
		"kb/optometry.md":   "## optometry",
		"kb/archive/old.md": "old",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list-type") == "2" {
			require.Equal(t, "/bucket", strings.TrimSuffix(r.URL.Path, "/"))
			require.Equal(t, "kb/", r.URL.Query().Get("prefix"))
			var contents strings.Builder
			for _, key := range []string{"kb/archive/old.md", "kb/dental.html", "kb/optometry.md"} {
				fmt.Fprintf(&contents, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", key, len(objects[key]))
			}
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>bucket</Name><Prefix>kb/</Prefix><KeyCount>3</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>%s</ListBucketResult>`, contents.String())
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/bucket/")
		body, ok := objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	store, err := New("s3", map[string]interface{}{
		"endpoint":   srv.URL,
		"bucket":     "bucket",
		"prefix":     "/kb/",
		"secret_id":  "id",
		"secret_key": "key",
		"path_style": true,
	})
	require.NoError(t, err)
	require.Equal(t, "s3", store.Type())

	keys, err := store.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"dental.html", "optometry.md"}, keys)

	rc, err := store.Open(context.Background(), "optometry.md")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "## optometry", string(data))
}
