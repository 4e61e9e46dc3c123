package scenery

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxSceneSize bounds a fetched scene document.
const maxSceneSize = 64 << 20

// FetchSceneGraph downloads a scene document, bypassing caches so the latest
// save is always read. Any failure here is fatal to a load.
func FetchSceneGraph(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch scene: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scene: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch scene %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSceneSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetch scene: %w", err)
	}
	if len(data) > maxSceneSize {
		return nil, fmt.Errorf("fetch scene %s: document exceeds %d bytes", url, maxSceneSize)
	}
	return data, nil
}
