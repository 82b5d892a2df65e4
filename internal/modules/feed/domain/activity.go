package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "feedvault/internal/platform/errors"
)

const (
	DateLayout      = "2006-01-02"
	DefaultPageSize = 25
	// TranscodingComplete must match the media domain's constant of the same name.
	TranscodingComplete = "complete"
)

// Activity keeps the remote record verbatim in Payload; the other fields are
// copies pulled out for indexing.
type Activity struct {
	ID         string
	StudentID  string
	EventDate  string
	ActionType string
	Payload    json.RawMessage
	Processed  bool
	videoState string
	hasVideo   bool
}

type activityHeader struct {
	ObjectID   string `json:"object_id"`
	EventDate  string `json:"event_date"`
	ActionType string `json:"action_type"`
	VideoInfo  *struct {
		TranscodingStatus string `json:"transcoding_status"`
		DownloadableURL   string `json:"downloadable_url"`
	} `json:"video_info"`
}

func DecodeActivity(raw []byte) (Activity, error) {
	var header activityHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return Activity{}, fmt.Errorf("decode activity: %w", err)
	}
	if strings.TrimSpace(header.ObjectID) == "" {
		return Activity{}, fmt.Errorf("%w: activity without object_id", apperrors.ErrInvalidInput)
	}
	a := Activity{
		ID:         header.ObjectID,
		EventDate:  header.EventDate,
		ActionType: header.ActionType,
		Payload:    append(json.RawMessage(nil), raw...),
	}
	if v := header.VideoInfo; v != nil && (v.TranscodingStatus != "" || v.DownloadableURL != "") {
		a.hasVideo = true
		a.videoState = header.VideoInfo.TranscodingStatus
	}
	return a, nil
}

// AwaitingTranscode reports a video whose remote processing has not finished.
// Such activities are left out of the store so a later sync picks them up.
func (a Activity) AwaitingTranscode() bool {
	return a.hasVideo && a.videoState != TranscodingComplete
}

type Student struct {
	ID        string
	FirstName string
	LastName  string
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// MatchStudent prefers an exact id match, otherwise exactly one student whose
// "first last" contains query.
func MatchStudent(students []Student, query string) (Student, error) {
	if len(students) == 0 {
		return Student{}, fmt.Errorf("%w: no students on this account", apperrors.ErrUnknownStudent)
	}
	for _, s := range students {
		if s.ID == query {
			return s, nil
		}
	}
	var matched []Student
	for _, s := range students {
		if strings.Contains(s.FullName(), query) {
			matched = append(matched, s)
		}
	}
	switch len(matched) {
	case 0:
		return Student{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownStudent, query)
	case 1:
		return matched[0], nil
	default:
		names := make([]string, 0, len(matched))
		for _, s := range matched {
			names = append(names, s.FullName())
		}
		return Student{}, fmt.Errorf("%w: %q matches %s", apperrors.ErrAmbiguousStudent, query, strings.Join(names, ", "))
	}
}

type ActivityQuery struct {
	StudentID string
	StartDate string
	EndDate   string
	Page      int
	PageSize  int
}

type Credentials struct {
	Login       string
	CachedToken string
	Headless    bool
	ForceLogin  bool
}

type MetadataRequest struct {
	Login         string
	Student       string
	StartDate     string
	EndDate       string
	Headless      bool
	IgnoreCached  bool
	ClearExisting bool
}

type MetadataCounts struct {
	StudentID string
	Skipped   int
	Added     int
	Total     int
	Pages     int
}

type MediaRequest struct {
	DestinationDir string
	WriteTags      bool
	ForceDownload  bool
	Latitude       *float64
	Longitude      *float64
}

type MediaCounts struct {
	Activities int
	Media      int
	Downloaded int
	Tagged     int
}
