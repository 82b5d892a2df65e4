package out

import (
	"context"
	"time"

	"feedvault/internal/modules/media/domain"
)

// Downloader streams url into path and returns the final path, which differs
// when an extension had to be inferred.
type Downloader interface {
	Download(ctx context.Context, url, path string) (string, error)
}

type TagWriter interface {
	WriteTags(ctx context.Context, path string, tags []domain.Tag) error
}

type TimezoneResolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) (*time.Location, error)
}
