package usecase

import (
	"context"
	"fmt"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
)

// uploadAll загружает файлы по порядку. При ошибке уже загруженные файлы удаляются.
func uploadAll(ctx context.Context, media port.MediaStoragePort, files []port.UploadedFile, logger port.LoggerPort) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > domain.MaxImagesPerRequest {
		return nil, domain.NewValidationError("images", fmt.Sprintf("at most %d files per request", domain.MaxImagesPerRequest))
	}

	uris := make([]string, 0, len(files))
	for _, f := range files {
		res, err := media.Upload(ctx, f)
		if err != nil {
			logger.Error("Media upload failed", err, port.Fields{"filename": f.Filename})
			discardUploads(ctx, media, uris, logger)
			return nil, err
		}
		uris = append(uris, res.URI)
	}
	return uris, nil
}

// discardUploads - best-effort удаление, ошибки только логируются. Возвращает неудаленные URI.
func discardUploads(ctx context.Context, media port.MediaStoragePort, uris []string, logger port.LoggerPort) []string {
	var failed []string
	for _, uri := range uris {
		if err := media.Delete(ctx, uri); err != nil {
			logger.Warn("Failed to delete media", port.Fields{"uri": uri, "error": err.Error()})
			failed = append(failed, uri)
		}
	}
	return failed
}

// rollbackUploads убирает файлы отмененной операции. То, что удалить не удалось, уходит событием media.orphaned.
func rollbackUploads(ctx context.Context, media port.MediaStoragePort, events port.EventPublisherPort, p *domain.Property, uris []string, logger port.LoggerPort) {
	orphaned := discardUploads(ctx, media, uris, logger)
	if len(orphaned) > 0 {
		publish(ctx, events, domain.NewPropertyEvent(domain.EventMediaOrphaned, p, orphaned), logger)
	}
}

// publish - события не влияют на результат операции.
func publish(ctx context.Context, events port.EventPublisherPort, event domain.PropertyEvent, logger port.LoggerPort) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish property event", err, port.Fields{"event_type": string(event.Type)})
	}
}
