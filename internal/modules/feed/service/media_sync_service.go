package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"

	"feedvault/internal/modules/feed/domain"
	feedout "feedvault/internal/modules/feed/port/out"
)

// MediaSyncService walks unprocessed activities and hands each to every
// processor in order. An activity is marked processed only after all of them
// succeed; the first error stops the run.
type MediaSyncService struct {
	store      feedout.ActivityStore
	processors []feedout.MediaProcessor
	log        hclog.Logger
}

func NewMediaSyncService(store feedout.ActivityStore, log hclog.Logger, processors ...feedout.MediaProcessor) *MediaSyncService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &MediaSyncService{store: store, processors: processors, log: log}
}

func (s *MediaSyncService) Sync(ctx context.Context, req domain.MediaRequest) (domain.MediaCounts, error) {
	activities, err := s.store.ListUnprocessedActivities(ctx)
	if err != nil {
		return domain.MediaCounts{}, err
	}
	s.log.Info("processing activities", "count", len(activities))

	var counts domain.MediaCounts
	for _, activity := range activities {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		dest := filepath.Join(req.DestinationDir, activity.StudentID)
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return counts, fmt.Errorf("create media dir: %w", err)
		}
		for _, proc := range s.processors {
			outcome, err := proc.Process(ctx, dest, activity, req)
			if err != nil {
				return counts, fmt.Errorf("activity %s %s: %w", activity.ID, proc.Kind(), err)
			}
			if outcome.Processed {
				counts.Media++
				s.log.Debug("media processed", "activity", activity.ID, "kind", proc.Kind(), "path", outcome.Path, "downloaded", outcome.Downloaded)
			}
			if outcome.Downloaded {
				counts.Downloaded++
			}
			if outcome.Tagged {
				counts.Tagged++
			}
		}
		if err := s.store.MarkProcessed(ctx, activity.ID); err != nil {
			return counts, err
		}
		counts.Activities++
	}
	s.log.Info("media sync finished", "activities", counts.Activities, "media", counts.Media, "downloaded", counts.Downloaded, "tagged", counts.Tagged)
	return counts, nil
}
