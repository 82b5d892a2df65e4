package out

import (
	"context"

	"feedvault/internal/modules/feed/domain"
)

// Authenticator builds a session, logging in only when no usable token is cached.
type Authenticator interface {
	Authenticate(ctx context.Context, creds domain.Credentials) (Session, error)
}

type Session interface {
	GuardianID() string
	ListStudents(ctx context.Context) ([]domain.Student, error)
	ListActivities(ctx context.Context, query domain.ActivityQuery) ([]domain.Activity, error)
	CurrentSessionToken() string
}

type CredentialPrompter interface {
	Password(ctx context.Context, login string) (string, error)
	MFACode(ctx context.Context, login string) (string, error)
}

type ActivityStore interface {
	InsertActivity(ctx context.Context, studentID string, activity domain.Activity) (bool, error)
	ListUnprocessedActivities(ctx context.Context) ([]domain.Activity, error)
	MarkProcessed(ctx context.Context, activityID string) error
	DeleteActivities(ctx context.Context, studentID string) (int64, error)
}

type TokenStore interface {
	GetToken(ctx context.Context, login string) (string, error)
	SetToken(ctx context.Context, login, token string) error
}

type MediaOutcome struct {
	Processed  bool
	Downloaded bool
	Tagged     bool
	Path       string
}

// MediaProcessor handles one media kind for one activity.
type MediaProcessor interface {
	Kind() string
	Process(ctx context.Context, destinationDir string, activity domain.Activity, req domain.MediaRequest) (MediaOutcome, error)
}
