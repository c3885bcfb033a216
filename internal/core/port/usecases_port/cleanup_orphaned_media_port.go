package usecases_port

import "context"

type CleanupOrphanedMediaUseCase interface {
	Execute(ctx context.Context, uris []string) error
}
