package media_adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"strings"

	"github.com/google/uuid"
)

// UploadsRoute - URL-префикс, под которым отдаются сохраненные файлы
const UploadsRoute = "/uploads/"

var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Config struct {
	UploadDir     string
	PublicBaseURL string
	MaxFileBytes  int64
}

// LocalMediaStorage хранит файлы на диске под случайными именами <uuid><ext>.
type LocalMediaStorage struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalMediaStorage(cfg Config) (*LocalMediaStorage, error) {
	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalMediaStorage{
		dir:      cfg.UploadDir,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes: cfg.MaxFileBytes,
	}, nil
}

// Dir - каталог для раздачи статикой.
func (s *LocalMediaStorage) Dir() string {
	return s.dir
}

func (s *LocalMediaStorage) Upload(ctx context.Context, file port.UploadedFile) (*port.UploadResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	mediaLogger := logger.WithFields(port.Fields{
		"component": "LocalMediaStorage",
		"method":    "Upload",
		"filename":  file.Filename,
	})

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, domain.NewValidationError("images", "unsupported image format, allowed: jpg, jpeg, png, webp")
	}
	if file.ContentType != "" && !strings.HasPrefix(file.ContentType, "image/") && file.ContentType != "application/octet-stream" {
		return nil, domain.NewValidationError("images", "file is not an image")
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return nil, domain.NewValidationError("images", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if file.Content == nil {
		return nil, domain.NewValidationError("images", "file is empty")
	}

	key := uuid.New().String() + ext
	target := filepath.Join(s.dir, key)

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		mediaLogger.Error("Failed to create media file", err, nil)
		return nil, fmt.Errorf("failed to create media file: %w", err)
	}

	src := file.Content
	if s.maxBytes > 0 {
		// +1, чтобы отличить "ровно лимит" от "больше лимита"
		src = io.LimitReader(file.Content, s.maxBytes+1)
	}
	written, copyErr := io.Copy(out, src)
	closeErr := out.Close()
	if copyErr == nil && closeErr != nil {
		copyErr = closeErr
	}
	if copyErr == nil && s.maxBytes > 0 && written > s.maxBytes {
		os.Remove(target)
		return nil, domain.NewValidationError("images", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if copyErr != nil {
		os.Remove(target)
		mediaLogger.Error("Failed to write media file", copyErr, nil)
		return nil, fmt.Errorf("failed to write media file: %w", copyErr)
	}

	uri := s.baseURL + UploadsRoute + key
	mediaLogger.Debug("Media stored", port.Fields{"uri": uri, "bytes": written})
	return &port.UploadResult{URI: uri, Key: key}, nil
}

// Delete принимает только URI, выданные этим хранилищем. Повторное удаление - не ошибка.
func (s *LocalMediaStorage) Delete(ctx context.Context, uri string) error {
	key, err := s.keyFromURI(uri)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete media file %s: %w", key, err)
	}
	return nil
}

func (s *LocalMediaStorage) keyFromURI(uri string) (string, error) {
	rest := strings.TrimPrefix(uri, s.baseURL)
	if !strings.HasPrefix(rest, UploadsRoute) {
		return "", domain.NewValidationError("uri", fmt.Sprintf("media uri %q is not managed by local storage", uri))
	}
	key := strings.TrimPrefix(rest, UploadsRoute)
	// только плоские имена, без выхода из каталога
	if key == "" || key != path.Base(key) || key == "." || key == ".." {
		return "", domain.NewValidationError("uri", fmt.Sprintf("media uri %q has an invalid key", uri))
	}
	return key, nil
}
