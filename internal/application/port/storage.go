package port

import "context"

// FileStorage defines attachment file storage operations
type FileStorage interface {
	// Save writes content under a unique name derived from the notification id
	// and the original filename, returning the unique name.
	Save(ctx context.Context, notificationID int64, originalName string, content []byte) (string, error)
	Read(ctx context.Context, uniqueName string) ([]byte, error)
	Exists(ctx context.Context, uniqueName string) bool
	Delete(ctx context.Context, uniqueName string) error
}
