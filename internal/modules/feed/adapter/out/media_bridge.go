package out

import (
	"context"

	feeddomain "feedvault/internal/modules/feed/domain"
	feedout "feedvault/internal/modules/feed/port/out"
	"feedvault/internal/modules/media/dto"
	mediain "feedvault/internal/modules/media/port/in"
)

type MediaBridge struct {
	media mediain.Usecase
	kind  string
}

func NewMediaBridge(media mediain.Usecase, kind string) feedout.MediaProcessor {
	return &MediaBridge{media: media, kind: kind}
}

// NewMediaBridges returns one processor per kind the media usecase knows, in its order.
func NewMediaBridges(media mediain.Usecase) []feedout.MediaProcessor {
	kinds := media.Kinds()
	out := make([]feedout.MediaProcessor, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, NewMediaBridge(media, kind))
	}
	return out
}

func (b *MediaBridge) Kind() string {
	return b.kind
}

func (b *MediaBridge) Process(ctx context.Context, destinationDir string, activity feeddomain.Activity, req feeddomain.MediaRequest) (feedout.MediaOutcome, error) {
	res, err := b.media.Process(ctx, dto.ProcessInput{
		Kind:           b.kind,
		DestinationDir: destinationDir,
		Payload:        activity.Payload,
		WriteTags:      req.WriteTags,
		ForceDownload:  req.ForceDownload,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	})
	return feedout.MediaOutcome{
		Processed:  res.Processed,
		Downloaded: res.Downloaded,
		Tagged:     res.Tagged,
		Path:       res.Path,
	}, err
}
