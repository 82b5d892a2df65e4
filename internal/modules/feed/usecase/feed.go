package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feedvault/internal/modules/feed/domain"
	"feedvault/internal/modules/feed/dto"
	feedin "feedvault/internal/modules/feed/port/in"
	"feedvault/internal/modules/feed/service"
	apperrors "feedvault/internal/platform/errors"
)

type Interactor struct {
	metadata *service.MetadataService
	media    *service.MediaSyncService
}

func NewInteractor(metadata *service.MetadataService, media *service.MediaSyncService) feedin.Usecase {
	return &Interactor{metadata: metadata, media: media}
}

func (i *Interactor) SyncMetadata(ctx context.Context, input dto.MetadataInput) (dto.MetadataOutput, error) {
	login := strings.TrimSpace(input.Login)
	if login == "" {
		return dto.MetadataOutput{}, fmt.Errorf("%w: login is required", apperrors.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Student) == "" {
		return dto.MetadataOutput{}, fmt.Errorf("%w: student is required", apperrors.ErrInvalidInput)
	}
	for name, value := range map[string]string{"start date": input.StartDate, "end date": input.EndDate} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, value); err != nil {
			return dto.MetadataOutput{}, fmt.Errorf("%w: %s %q must be YYYY-MM-DD", apperrors.ErrInvalidInput, name, value)
		}
	}
	counts, err := i.metadata.Sync(ctx, domain.MetadataRequest{
		Login:         login,
		Student:       input.Student,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Headless:      input.Headless,
		IgnoreCached:  input.IgnoreCachedAuth,
		ClearExisting: input.ClearExisting,
	})
	return dto.MetadataOutput{StudentID: counts.StudentID, Skipped: counts.Skipped, Added: counts.Added, Total: counts.Total}, err
}

func (i *Interactor) SyncMedia(ctx context.Context, input dto.MediaInput) (dto.MediaOutput, error) {
	if strings.TrimSpace(input.DestinationDir) == "" {
		return dto.MediaOutput{}, fmt.Errorf("%w: download directory is required", apperrors.ErrInvalidInput)
	}
	// A lone latitude or longitude is dropped: GPS tags need both.
	lat, lon := input.Latitude, input.Longitude
	if lat == nil || lon == nil {
		lat, lon = nil, nil
	}
	if lat != nil && (*lat < -90 || *lat > 90 || *lon < -180 || *lon > 180) {
		return dto.MediaOutput{}, fmt.Errorf("%w: coordinates out of range", apperrors.ErrInvalidInput)
	}
	counts, err := i.media.Sync(ctx, domain.MediaRequest{
		DestinationDir: input.DestinationDir,
		WriteTags:      !input.SkipTagging,
		ForceDownload:  input.ForceDownload,
		Latitude:       lat,
		Longitude:      lon,
	})
	return dto.MediaOutput{
		Activities: counts.Activities,
		Media:      counts.Media,
		Downloaded: counts.Downloaded,
		Tagged:     counts.Tagged,
	}, err
}
