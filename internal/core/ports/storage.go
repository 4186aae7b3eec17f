package ports

import "context"

// ObjectStore uploads objects by path and resolves their public URLs.
type ObjectStore interface {
	// Upload writes data under key, overwriting any existing object.
	Upload(ctx context.Context, key, contentType string, data []byte) error
	// PublicURL returns the browser-reachable URL for an uploaded key.
	PublicURL(key string) string
}
