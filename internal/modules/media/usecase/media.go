package usecase

import (
	"context"

	"feedvault/internal/modules/media/domain"
	"feedvault/internal/modules/media/dto"
	mediain "feedvault/internal/modules/media/port/in"
	"feedvault/internal/modules/media/service"
)

type Interactor struct {
	svc *service.MediaService
}

func NewInteractor(svc *service.MediaService) mediain.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Kinds() []string {
	kinds := i.svc.Kinds()
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, string(kind))
	}
	return out
}

func (i *Interactor) Process(ctx context.Context, input dto.ProcessInput) (dto.ProcessOutput, error) {
	kind := domain.Kind(input.Kind)
	if err := kind.Validate(); err != nil {
		return dto.ProcessOutput{Kind: input.Kind}, err
	}
	payload, err := domain.ParsePayload(input.Payload)
	if err != nil {
		return dto.ProcessOutput{Kind: input.Kind}, err
	}
	var coords *domain.Coordinates
	if input.Latitude != nil && input.Longitude != nil {
		coords = &domain.Coordinates{Latitude: *input.Latitude, Longitude: *input.Longitude}
	}
	res, err := i.svc.Process(ctx, kind, service.ProcessRequest{
		DestinationDir: input.DestinationDir,
		Payload:        payload,
		WriteTags:      input.WriteTags,
		ForceDownload:  input.ForceDownload,
		Coordinates:    coords,
	})
	out := dto.ProcessOutput{
		Kind:       string(res.Kind),
		Processed:  res.Processed,
		Downloaded: res.Downloaded,
		Tagged:     res.Tagged,
		Path:       res.Path,
	}
	if err != nil {
		return out, err
	}
	return out, nil
}
