package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "feedvault/internal/platform/errors"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) Validate() error {
	switch k {
	case KindImage, KindVideo:
		return nil
	default:
		return fmt.Errorf("%w: unsupported media kind %q", apperrors.ErrInvalidInput, string(k))
	}
}

const (
	// TranscodingComplete must match the feed domain's constant of the same name.
	TranscodingComplete = "complete"

	fileTimeLayout = "20060102150405Z"
	tagTimeLayout  = "2006:01:02 15:04:05"
)

// eventLayouts covers the feed's event_date forms, with and without a colon in the offset.
var eventLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Tag struct {
	Name  string
	Value string
}

type Payload struct {
	EventDate string     `json:"event_date"`
	Media     *MediaInfo `json:"media"`
	VideoInfo *VideoInfo `json:"video_info"`
}

type MediaInfo struct {
	ImageURL string `json:"image_url"`
}

type VideoInfo struct {
	DownloadableURL   string `json:"downloadable_url"`
	TranscodingStatus string `json:"transcoding_status"`
}

func ParsePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decode activity payload: %w", err)
	}
	return p, nil
}

func (p Payload) EventTime() (time.Time, error) {
	for _, layout := range eventLayouts {
		if t, err := time.Parse(layout, p.EventDate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable event_date %q", apperrors.ErrInvalidInput, p.EventDate)
}

// ImageURL is empty when the activity carries no image.
func (p Payload) ImageURL() string {
	if p.Media == nil {
		return ""
	}
	return p.Media.ImageURL
}

// VideoURL is empty until the remote transcode has completed.
func (p Payload) VideoURL() string {
	if p.VideoInfo == nil || p.VideoInfo.TranscodingStatus != TranscodingComplete {
		return ""
	}
	return p.VideoInfo.DownloadableURL
}

func (p Payload) URL(kind Kind) string {
	switch kind {
	case KindImage:
		return p.ImageURL()
	case KindVideo:
		return p.VideoURL()
	default:
		return ""
	}
}

func stripQuery(mediaURL string) string {
	if idx := strings.IndexByte(mediaURL, '?'); idx >= 0 {
		return mediaURL[:idx]
	}
	return mediaURL
}

func stamp(eventTime time.Time) string {
	return eventTime.UTC().Format(fileTimeLayout)
}

// ImageFileName returns the stem for an image download. The extension is only
// present when the URL carried one.
func ImageFileName(mediaURL string, eventTime time.Time) (string, error) {
	clean := stripQuery(mediaURL)
	parts := strings.Split(clean, "/")
	var fileID string
	switch {
	case strings.HasSuffix(clean, "jpg"):
		fileID = parts[len(parts)-1]
	case len(parts) >= 2 && parts[len(parts)-1] == "data-media":
		fileID = parts[len(parts)-2]
	}
	if fileID == "" {
		return "", fmt.Errorf("%w: unexpected image url format %s", apperrors.ErrMalformedMediaURL, mediaURL)
	}
	return stamp(eventTime) + fileID, nil
}

// VideoFileName uses the directory two levels from the end, hyphens removed and
// case kept, plus the extension of the final segment.
func VideoFileName(mediaURL string, eventTime time.Time) (string, error) {
	clean := stripQuery(mediaURL)
	parts := strings.Split(clean, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("%w: unexpected video url format %s", apperrors.ErrMalformedMediaURL, mediaURL)
	}
	videoID := strings.ReplaceAll(parts[len(parts)-2], "-", "")
	last := parts[len(parts)-1]
	ext := last[strings.LastIndexByte(last, '.')+1:]
	return stamp(eventTime) + videoID + "." + ext, nil
}

// VideoIDIsUUID reports whether the directory VideoFileName takes its id from
// parses as a uuid. It never changes the file name.
func VideoIDIsUUID(mediaURL string) bool {
	parts := strings.Split(stripQuery(mediaURL), "/")
	if len(parts) < 2 {
		return false
	}
	_, err := uuid.Parse(parts[len(parts)-2])
	return err == nil
}

func FileName(kind Kind, mediaURL string, eventTime time.Time) (string, error) {
	switch kind {
	case KindImage:
		return ImageFileName(mediaURL, eventTime)
	case KindVideo:
		return VideoFileName(mediaURL, eventTime)
	default:
		return "", kind.Validate()
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ImageTags localizes eventTime into loc (UTC when loc is nil) and emits date,
// offset and, when coords is set, GPS tags.
func ImageTags(eventTime time.Time, loc *time.Location, coords *Coordinates) []Tag {
	if loc == nil {
		loc = time.UTC
	}
	created := eventTime.In(loc)
	tags := make([]Tag, 0, 6)
	if coords != nil {
		latRef := "N"
		if coords.Latitude < 0 {
			latRef = "S"
		}
		lonRef := "E"
		if coords.Longitude < 0 {
			lonRef = "W"
		}
		tags = append(tags,
			Tag{Name: "gpslatitude", Value: formatCoordinate(coords.Latitude)},
			Tag{Name: "gpslongitude", Value: formatCoordinate(coords.Longitude)},
			Tag{Name: "gpslatituderef", Value: latRef},
			Tag{Name: "gpslongituderef", Value: lonRef},
		)
	}
	offset := created.Format("-0700")
	tags = append(tags,
		Tag{Name: "ModifyDate", Value: created.Format(tagTimeLayout)},
		Tag{Name: "OffsetTimeDigitized", Value: offset[:3] + ":" + offset[3:]},
	)
	return tags
}

// VideoTags writes CreateDate in UTC.
func VideoTags(eventTime time.Time, coords *Coordinates) []Tag {
	tags := make([]Tag, 0, 2)
	if coords != nil {
		tags = append(tags, Tag{
			Name:  "Keys:GPSCoordinates",
			Value: fmt.Sprintf("%.4f, %.4f, 0", coords.Latitude, coords.Longitude),
		})
	}
	tags = append(tags, Tag{Name: "CreateDate", Value: eventTime.UTC().Format(tagTimeLayout)})
	return tags
}

type Result struct {
	Kind       Kind
	Processed  bool
	Downloaded bool
	Tagged     bool
	Path       string
}
