package port

import (
	"context"
	"io"
)

// UploadedFile - файл из multipart-запроса.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadResult - результат загрузки: URI, который попадает в images.
type UploadResult struct {
	URI string
	Key string
}

// MediaStoragePort - хранилище изображений.
type MediaStoragePort interface {
	// Upload сохраняет файл; неподдерживаемый формат - *domain.ValidationError
	Upload(ctx context.Context, file UploadedFile) (*UploadResult, error)
	Delete(ctx context.Context, uri string) error
}
