package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"feedvault/internal/modules/media/domain"
	mediaout "feedvault/internal/modules/media/port/out"
	apperrors "feedvault/internal/platform/errors"
)

// Strategy is the kind-specific half of Process.
type Strategy interface {
	Kind() domain.Kind
	URL(payload domain.Payload) string
	FileName(mediaURL string, eventTime time.Time) (string, error)
	Tags(ctx context.Context, eventTime time.Time, coords *domain.Coordinates) ([]domain.Tag, error)
}

type ImageStrategy struct {
	tz mediaout.TimezoneResolver
}

func NewImageStrategy(tz mediaout.TimezoneResolver) ImageStrategy {
	return ImageStrategy{tz: tz}
}

func (ImageStrategy) Kind() domain.Kind { return domain.KindImage }

func (ImageStrategy) URL(payload domain.Payload) string { return payload.ImageURL() }

func (ImageStrategy) FileName(mediaURL string, eventTime time.Time) (string, error) {
	return domain.ImageFileName(mediaURL, eventTime)
}

func (s ImageStrategy) Tags(ctx context.Context, eventTime time.Time, coords *domain.Coordinates) ([]domain.Tag, error) {
	var loc *time.Location
	if coords != nil {
		if s.tz == nil {
			return nil, fmt.Errorf("timezone resolver is not configured")
		}
		resolved, err := s.tz.Resolve(ctx, coords.Latitude, coords.Longitude)
		if err != nil {
			return nil, err
		}
		loc = resolved
	}
	return domain.ImageTags(eventTime, loc, coords), nil
}

type VideoStrategy struct{}

func NewVideoStrategy() VideoStrategy { return VideoStrategy{} }

func (VideoStrategy) Kind() domain.Kind { return domain.KindVideo }

func (VideoStrategy) URL(payload domain.Payload) string { return payload.VideoURL() }

func (VideoStrategy) FileName(mediaURL string, eventTime time.Time) (string, error) {
	return domain.VideoFileName(mediaURL, eventTime)
}

func (VideoStrategy) Tags(_ context.Context, eventTime time.Time, coords *domain.Coordinates) ([]domain.Tag, error) {
	return domain.VideoTags(eventTime, coords), nil
}

type ProcessRequest struct {
	DestinationDir string
	Payload        domain.Payload
	WriteTags      bool
	ForceDownload  bool
	Coordinates    *domain.Coordinates
}

type MediaService struct {
	downloader mediaout.Downloader
	tagger     mediaout.TagWriter
	log        hclog.Logger
	kinds      []domain.Kind
	strategies map[domain.Kind]Strategy
}

func NewMediaService(downloader mediaout.Downloader, tagger mediaout.TagWriter, log hclog.Logger, strategies ...Strategy) *MediaService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	s := &MediaService{
		downloader: downloader,
		tagger:     tagger,
		log:        log,
		strategies: map[domain.Kind]Strategy{},
	}
	for _, strategy := range strategies {
		if _, ok := s.strategies[strategy.Kind()]; !ok {
			s.kinds = append(s.kinds, strategy.Kind())
		}
		s.strategies[strategy.Kind()] = strategy
	}
	return s
}

// Kinds lists registered strategies in registration order.
func (s *MediaService) Kinds() []domain.Kind {
	return append([]domain.Kind(nil), s.kinds...)
}

func (s *MediaService) Process(ctx context.Context, kind domain.Kind, req ProcessRequest) (domain.Result, error) {
	strategy, ok := s.strategies[kind]
	if !ok {
		return domain.Result{Kind: kind}, fmt.Errorf("%w: no processor for media kind %q", apperrors.ErrInvalidInput, string(kind))
	}
	return s.process(ctx, strategy, req)
}

func (s *MediaService) process(ctx context.Context, strategy Strategy, req ProcessRequest) (domain.Result, error) {
	result := domain.Result{Kind: strategy.Kind()}
	mediaURL := strategy.URL(req.Payload)
	if mediaURL == "" {
		return result, nil
	}
	eventTime, err := req.Payload.EventTime()
	if err != nil {
		return result, err
	}
	name, err := strategy.FileName(mediaURL, eventTime)
	if err != nil {
		return result, err
	}
	target := filepath.Join(req.DestinationDir, name)
	log := s.log.With("kind", string(strategy.Kind()), "file", name)
	if strategy.Kind() == domain.KindVideo && !domain.VideoIDIsUUID(mediaURL) {
		log.Debug("video url id segment is not a uuid", "url", mediaURL)
	}

	existing, err := filepath.Glob(globEscape(target) + "*")
	if err != nil {
		return result, fmt.Errorf("look up existing media: %w", err)
	}
	path := target
	if len(existing) > 0 && !req.ForceDownload {
		path = existing[0]
		log.Debug("media already on disk, skipping download", "path", path)
	} else {
		path, err = s.downloader.Download(ctx, mediaURL, target)
		if err != nil {
			return result, err
		}
		result.Downloaded = true
	}
	result.Path = path

	if req.WriteTags {
		if err := s.tag(ctx, strategy, path, eventTime, req.Coordinates); err != nil {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Error("remove untagged media", "path", path, "error", rmErr)
			}
			return result, fmt.Errorf("%w: %s: %w", apperrors.ErrTagging, path, err)
		}
		result.Tagged = true
	}
	result.Processed = true
	return result, nil
}

func (s *MediaService) tag(ctx context.Context, strategy Strategy, path string, eventTime time.Time, coords *domain.Coordinates) error {
	tags, err := strategy.Tags(ctx, eventTime, coords)
	if err != nil {
		return err
	}
	if s.tagger == nil {
		return fmt.Errorf("tag writer is not configured")
	}
	return s.tagger.WriteTags(ctx, path, tags)
}

// globEscape brackets the pattern metacharacters so dir names are matched literally.
func globEscape(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
