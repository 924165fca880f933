package storage

import "context"

// UploadResult reports the outcome of an image upload. Failures are folded
// into the struct instead of an error so callers can treat uploads as
// best-effort.
type UploadResult struct {
	Success  bool
	URL      string
	PublicID string
	Format   string
	Width    int
	Height   int
	Error    string
}

// Uploader pushes an image to remote object storage and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte) UploadResult
	Destroy(ctx context.Context, publicID string) error
}
