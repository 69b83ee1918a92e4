package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hsvida/incident-workflow/internal/application/port"
)

// LocalFileStorage implements port.FileStorage on the local filesystem.
// Files are stored flat under baseDir; the unique name carries the
// notification id and a random component so originals can never collide.
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) (*LocalFileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Save writes content under <notificationID>_<random>_<sanitized-name>.
func (s *LocalFileStorage) Save(ctx context.Context, notificationID int64, originalName string, content []byte) (string, error) {
	uniqueName := fmt.Sprintf("%d_%s_%s",
		notificationID,
		strings.ReplaceAll(uuid.NewString(), "-", ""),
		SanitizeFilename(originalName),
	)

	fullPath := filepath.Join(s.baseDir, uniqueName)
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write attachment",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	s.logger.Debug("Attachment saved",
		zap.String("unique_name", uniqueName),
		zap.Int("size", len(content)))

	return uniqueName, nil
}

// Read returns the stored content for a unique name.
func (s *LocalFileStorage) Read(ctx context.Context, uniqueName string) ([]byte, error) {
	fullPath := filepath.Join(s.baseDir, uniqueName)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read attachment",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	return content, nil
}

// Exists checks whether a stored file is present on disk.
func (s *LocalFileStorage) Exists(ctx context.Context, uniqueName string) bool {
	fullPath := filepath.Join(s.baseDir, uniqueName)
	if err := s.validatePath(fullPath); err != nil {
		return false
	}
	_, err := os.Stat(fullPath)
	return err == nil
}

// Delete removes a stored file.
func (s *LocalFileStorage) Delete(ctx context.Context, uniqueName string) error {
	fullPath := filepath.Join(s.baseDir, uniqueName)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// validatePath rejects names that escape the base directory.
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(os.PathSeparator)) {
		return fmt.Errorf("path escapes storage directory: %s", fullPath)
	}
	return nil
}

// SanitizeFilename keeps alphanumerics, dot, underscore and hyphen; everything
// else becomes an underscore.
func SanitizeFilename(name string) string {
	if name == "" {
		return "arquivo"
	}
	var b strings.Builder
	for _, r := range filepath.Base(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "arquivo"
	}
	return b.String()
}

// Verify interface compliance
var _ port.FileStorage = (*LocalFileStorage)(nil)
