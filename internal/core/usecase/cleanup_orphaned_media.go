package usecase

import (
	"context"
	"errors"
	"fmt"
	"property-service/internal/contextkeys"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
)

type CleanupOrphanedMediaUseCase struct {
	media port.MediaStoragePort
}

func NewCleanupOrphanedMediaUseCase(media port.MediaStoragePort) *CleanupOrphanedMediaUseCase {
	return &CleanupOrphanedMediaUseCase{media: media}
}

// Execute повторяет удаление файлов. Ошибка возвращается, если хоть один файл остался,
// тогда сообщение уйдет на повтор. URI чужого хранилища пропускаются: повтор их не исправит.
func (uc *CleanupOrphanedMediaUseCase) Execute(ctx context.Context, uris []string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "CleanupOrphanedMedia",
		"uris_count": len(uris),
	})

	ucLogger.Info("Use case started", nil)

	var errs []error
	removed, skipped := 0, 0
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		err := uc.media.Delete(ctx, uri)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, domain.ErrValidation):
			ucLogger.Warn("Skipping media uri that cannot be deleted", port.Fields{"uri": uri, "error": err.Error()})
			skipped++
		default:
			errs = append(errs, fmt.Errorf("%s: %w", uri, err))
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		ucLogger.Error("Some media files are still orphaned", err, port.Fields{"removed": removed, "failed": len(errs)})
		return err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"removed": removed, "skipped": skipped})
	return nil
}
