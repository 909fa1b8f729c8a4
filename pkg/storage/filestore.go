package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileStore persists uploaded document binaries on disk under a base
// directory, partitioned into year/month subdirectories.
type FileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewFileStore ensures the base directory exists and returns a handle.
func NewFileStore(baseDir string, logger *zap.Logger) (*FileStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &FileStore{baseDir: baseDir, logger: logger}, nil
}

// Save streams the content into a collision-resistant path derived from the
// original filename and returns the path relative to the base directory.
// The original name is only trusted for its display part and extension.
func (s *FileStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	relPath := filepath.Join(time.Now().UTC().Format("2006/01"), uniqueName(originalName))
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	_, err = io.Copy(file, readerWithContext{ctx: ctx, r: r})
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// A half-written blob must not survive an aborted upload.
		if rmErr := os.Remove(fullPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("failed to remove partial upload", zap.String("path", relPath), zap.Error(rmErr))
		}
		return "", fmt.Errorf("write upload stream: %w", err)
	}

	return filepath.ToSlash(relPath), nil
}

// Open returns a read-only handle for the stored file. The returned error
// wraps fs.ErrNotExist when the object is absent.
func (s *FileStore) Open(relPath string) (*os.File, error) {
	fullPath, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open upload file %s: %w", relPath, err)
	}
	return file, nil
}

// Delete removes a stored file. An already-absent object is not an error and
// unexpected failures are logged and swallowed so metadata cleanup can
// proceed regardless.
func (s *FileStore) Delete(relPath string) {
	fullPath, err := s.resolve(relPath)
	if err != nil {
		s.logger.Warn("refusing to delete upload", zap.String("path", relPath), zap.Error(err))
		return
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to delete upload file", zap.String("path", relPath), zap.Error(err))
	}
}

func (s *FileStore) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("invalid storage path %q: %w", relPath, fs.ErrNotExist)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func uniqueName(original string) string {
	base := sanitizeFilename(filepath.Base(original))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s_%s", randomToken(), base)
}

func sanitizeFilename(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func randomToken() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// readerWithContext aborts the copy as soon as the request is cancelled.
type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
