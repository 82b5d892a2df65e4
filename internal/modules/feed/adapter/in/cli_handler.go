package in

import (
	"context"

	"feedvault/internal/modules/feed/dto"
	feedin "feedvault/internal/modules/feed/port/in"
)

type CLIHandler struct {
	usecase feedin.Usecase
}

func NewCLIHandler(usecase feedin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Metadata(ctx context.Context, input dto.MetadataInput) (dto.MetadataOutput, error) {
	return h.usecase.SyncMetadata(ctx, input)
}

func (h CLIHandler) Media(ctx context.Context, input dto.MediaInput) (dto.MediaOutput, error) {
	return h.usecase.SyncMedia(ctx, input)
}
