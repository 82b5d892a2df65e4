package in

import (
	"context"

	"feedvault/internal/modules/media/dto"
)

type Usecase interface {
	Kinds() []string
	Process(ctx context.Context, input dto.ProcessInput) (dto.ProcessOutput, error)
}
