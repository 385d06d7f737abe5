package storage

import "context"

// Fetcher pulls raw bytes from an asset URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ArtifactStore persists rendered thumbnails and returns a public URL.
type ArtifactStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}
