package scenery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSceneGraph(t *testing.T) {
	var cacheControl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl = r.Header.Get("Cache-Control")
		if r.URL.Path != "/scene.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"nodes": []}`))
	}))
	defer srv.Close()

	data, err := FetchSceneGraph(context.Background(), srv.Client(), srv.URL+"/scene.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": []}`, string(data))
	assert.Equal(t, "no-cache", cacheControl)

	_, err = FetchSceneGraph(context.Background(), srv.Client(), srv.URL+"/missing.json")
	assert.Error(t, err)
}

func TestFetchSceneGraph_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FetchSceneGraph(ctx, nil, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
