package in

import (
	"context"

	"feedvault/internal/modules/feed/dto"
)

type Usecase interface {
	SyncMetadata(ctx context.Context, input dto.MetadataInput) (dto.MetadataOutput, error)
	SyncMedia(ctx context.Context, input dto.MediaInput) (dto.MediaOutput, error)
}
