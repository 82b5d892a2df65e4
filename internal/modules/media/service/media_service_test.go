package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"feedvault/internal/modules/media/domain"
	"feedvault/internal/modules/media/service"
	apperrors "feedvault/internal/platform/errors"
)

type fakeDownloader struct {
	calls []string
	ext   string
}

func (d *fakeDownloader) Download(_ context.Context, url, path string) (string, error) {
	d.calls = append(d.calls, url)
	final := path
	if filepath.Ext(final) == "" && d.ext != "" {
		final += d.ext
	}
	if err := os.WriteFile(final, []byte("bytes"), 0o644); err != nil {
		return "", err
	}
	return final, nil
}

type fakeTagger struct {
	paths []string
	tags  [][]domain.Tag
	err   error
}

func (f *fakeTagger) WriteTags(_ context.Context, path string, tags []domain.Tag) error {
	f.paths = append(f.paths, path)
	f.tags = append(f.tags, tags)
	return f.err
}

type fakeTZ struct {
	loc *time.Location
	err error
}

func (f fakeTZ) Resolve(context.Context, float64, float64) (*time.Location, error) {
	return f.loc, f.err
}

func payload(t *testing.T, raw string) domain.Payload {
	t.Helper()
	p, err := domain.ParsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	return p
}

const imagePayload = `{"event_date":"2023-04-05T18:22:31.000Z","media":{"image_url":"https://cdn.example.com/p/abc.jpg?sig=1"},"video_info":null}`

func newService(d *fakeDownloader, tagger *fakeTagger, tz fakeTZ) *service.MediaService {
	return service.NewMediaService(d, tagger, nil, service.NewImageStrategy(tz), service.NewVideoStrategy())
}

func TestProcessWithoutMediaIsNotProcessed(t *testing.T) {
	t.Parallel()
	d := &fakeDownloader{}
	svc := newService(d, &fakeTagger{}, fakeTZ{})
	for _, kind := range svc.Kinds() {
		res, err := svc.Process(context.Background(), kind, service.ProcessRequest{
			DestinationDir: t.TempDir(),
			Payload:        payload(t, `{"event_date":"2023-04-05T18:22:31.000Z","media":null,"video_info":null}`),
			WriteTags:      true,
		})
		if err != nil {
			t.Fatalf("process %s: %v", kind, err)
		}
		if res.Processed || res.Downloaded || res.Tagged {
			t.Fatalf("expected untouched result for %s, got %+v", kind, res)
		}
	}
	if len(d.calls) != 0 {
		t.Fatalf("no download expected, got %v", d.calls)
	}
}

func TestProcessImageDownloadsAndTags(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	d := &fakeDownloader{}
	tagger := &fakeTagger{}
	svc := newService(d, tagger, fakeTZ{loc: time.FixedZone("PDT", -7*3600)})
	lat, lon := 37.7749, -122.4194
	res, err := svc.Process(context.Background(), domain.KindImage, service.ProcessRequest{
		DestinationDir: dir,
		Payload:        payload(t, imagePayload),
		WriteTags:      true,
		Coordinates:    &domain.Coordinates{Latitude: lat, Longitude: lon},
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Processed || !res.Downloaded || !res.Tagged {
		t.Fatalf("expected full processing, got %+v", res)
	}
	if res.Path != filepath.Join(dir, "20230405182231Zabc.jpg") {
		t.Fatalf("unexpected path %s", res.Path)
	}
	refs := map[string]string{}
	for _, tag := range tagger.tags[0] {
		refs[tag.Name] = tag.Value
	}
	if refs["gpslatituderef"] != "N" || refs["gpslongituderef"] != "W" || refs["OffsetTimeDigitized"] != "-07:00" {
		t.Fatalf("unexpected tags %+v", tagger.tags[0])
	}
}

func TestProcessExistingFileSkipsDownloadButTags(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "20230405182231Zf00d.png")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	d := &fakeDownloader{}
	tagger := &fakeTagger{}
	svc := newService(d, tagger, fakeTZ{})
	res, err := svc.Process(context.Background(), domain.KindImage, service.ProcessRequest{
		DestinationDir: dir,
		Payload:        payload(t, `{"event_date":"2023-04-05T18:22:31.000Z","media":{"image_url":"https://cdn.example.com/p/f00d/data-media"}}`),
		WriteTags:      true,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Downloaded || !res.Tagged || !res.Processed {
		t.Fatalf("expected skip download + tag, got %+v", res)
	}
	if len(d.calls) != 0 {
		t.Fatalf("download should be skipped, got %v", d.calls)
	}
	if len(tagger.paths) != 1 || tagger.paths[0] != existing {
		t.Fatalf("expected existing file to be tagged, got %v", tagger.paths)
	}
}

func TestProcessForceDownloadReplacesExisting(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20230405182231Zabc.jpg"), []byte("old"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	d := &fakeDownloader{}
	svc := newService(d, &fakeTagger{}, fakeTZ{})
	res, err := svc.Process(context.Background(), domain.KindImage, service.ProcessRequest{
		DestinationDir: dir,
		Payload:        payload(t, imagePayload),
		ForceDownload:  true,
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Downloaded || res.Tagged {
		t.Fatalf("expected forced download without tags, got %+v", res)
	}
	if len(d.calls) != 1 {
		t.Fatalf("expected one download, got %v", d.calls)
	}
}

func TestProcessTaggingFailureRemovesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tagger := &fakeTagger{err: fmt.Errorf("exit status 1")}
	svc := newService(&fakeDownloader{}, tagger, fakeTZ{})
	res, err := svc.Process(context.Background(), domain.KindImage, service.ProcessRequest{
		DestinationDir: dir,
		Payload:        payload(t, imagePayload),
		WriteTags:      true,
	})
	if !errors.Is(err, apperrors.ErrTagging) {
		t.Fatalf("expected tagging error, got %v", err)
	}
	if res.Tagged || res.Processed {
		t.Fatalf("failed result must not claim success: %+v", res)
	}
	if _, statErr := os.Stat(res.Path); !os.IsNotExist(statErr) {
		t.Fatalf("expected %s to be removed, stat err=%v", res.Path, statErr)
	}
}

func TestProcessTimezoneFailureCountsAsTaggingFailure(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tagger := &fakeTagger{}
	svc := newService(&fakeDownloader{}, tagger, fakeTZ{err: fmt.Errorf("no zone")})
	_, err := svc.Process(context.Background(), domain.KindImage, service.ProcessRequest{
		DestinationDir: dir,
		Payload:        payload(t, imagePayload),
		WriteTags:      true,
		Coordinates:    &domain.Coordinates{Latitude: 1, Longitude: 2},
	})
	if !errors.Is(err, apperrors.ErrTagging) {
		t.Fatalf("expected tagging error, got %v", err)
	}
	if len(tagger.paths) != 0 {
		t.Fatalf("tag writer should not run without a zone")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected download to be cleaned up, found %d files", len(entries))
	}
}

func TestProcessVideo(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	d := &fakeDownloader{}
	tagger := &fakeTagger{}
	svc := newService(d, tagger, fakeTZ{})
	pending := payload(t, `{"event_date":"2023-04-05T18:22:31.000Z","video_info":{"downloadable_url":"https://cdn.example.com/v/a-b-c/video.mp4","transcoding_status":"queued"}}`)
	res, err := svc.Process(context.Background(), domain.KindVideo, service.ProcessRequest{DestinationDir: dir, Payload: pending, WriteTags: true})
	if err != nil || res.Processed {
		t.Fatalf("pending transcode should be skipped, res=%+v err=%v", res, err)
	}

	done := payload(t, `{"event_date":"2023-04-05T18:22:31.000Z","video_info":{"downloadable_url":"https://cdn.example.com/v/a-b-c/video.mp4?x=1","transcoding_status":"complete"}}`)
	res, err = svc.Process(context.Background(), domain.KindVideo, service.ProcessRequest{DestinationDir: dir, Payload: done, WriteTags: true})
	if err != nil {
		t.Fatalf("process video: %v", err)
	}
	if res.Path != filepath.Join(dir, "20230405182231Zabc.mp4") || !res.Tagged {
		t.Fatalf("unexpected video result %+v", res)
	}
	if tagger.tags[0][0].Name != "CreateDate" {
		t.Fatalf("expected date-only tags without coordinates, got %+v", tagger.tags[0])
	}
}

func TestProcessMalformedURLAndUnknownKind(t *testing.T) {
	t.Parallel()
	svc := newService(&fakeDownloader{}, &fakeTagger{}, fakeTZ{})
	_, err := svc.Process(context.Background(), domain.KindImage, service.ProcessRequest{
		DestinationDir: t.TempDir(),
		Payload:        payload(t, `{"event_date":"2023-04-05T18:22:31.000Z","media":{"image_url":"https://cdn.example.com/p/abc.gif"}}`),
	})
	if !errors.Is(err, apperrors.ErrMalformedMediaURL) {
		t.Fatalf("expected malformed url error, got %v", err)
	}
	if _, err := svc.Process(context.Background(), domain.Kind("audio"), service.ProcessRequest{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown kind, got %v", err)
	}
}

func TestProcessVideoFindsFileNamedWithUppercaseID(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "20230405182231ZABCDEF0123456789ABCDEF0123456789.mp4")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	d := &fakeDownloader{}
	svc := newService(d, &fakeTagger{}, fakeTZ{})
	res, err := svc.Process(context.Background(), domain.KindVideo, service.ProcessRequest{
		DestinationDir: dir,
		Payload:        payload(t, `{"event_date":"2023-04-05T18:22:31.000Z","video_info":{"downloadable_url":"https://cdn.example.com/v/ABCDEF01-2345-6789-ABCD-EF0123456789/video.mp4","transcoding_status":"complete"}}`),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Downloaded || res.Path != existing || len(d.calls) != 0 {
		t.Fatalf("existing upper-case file should be reused, got %+v calls=%v", res, d.calls)
	}
}
