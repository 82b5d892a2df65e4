package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"feedvault/internal/modules/feed/domain"
	feedout "feedvault/internal/modules/feed/port/out"
	apperrors "feedvault/internal/platform/errors"
)

func mustActivity(t *testing.T, raw string) domain.Activity {
	t.Helper()
	a, err := domain.DecodeActivity([]byte(raw))
	if err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	return a
}

type fakeSession struct {
	token      string
	students   []domain.Student
	pages      [][]domain.Activity
	queries    []domain.ActivityQuery
	pageErr    error
	studentErr error
}

func (s *fakeSession) GuardianID() string          { return "g-1" }
func (s *fakeSession) CurrentSessionToken() string { return s.token }

func (s *fakeSession) ListStudents(context.Context) ([]domain.Student, error) {
	return s.students, s.studentErr
}

func (s *fakeSession) ListActivities(_ context.Context, q domain.ActivityQuery) ([]domain.Activity, error) {
	s.queries = append(s.queries, q)
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	if q.Page >= len(s.pages) {
		return nil, nil
	}
	return s.pages[q.Page], nil
}

type fakeAuth struct {
	session *fakeSession
	err     error
	creds   []domain.Credentials
}

func (a *fakeAuth) Authenticate(_ context.Context, creds domain.Credentials) (feedout.Session, error) {
	a.creds = append(a.creds, creds)
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

type fakeTokens struct {
	tokens map[string]string
	sets   int
}

func (f *fakeTokens) GetToken(_ context.Context, login string) (string, error) {
	token, ok := f.tokens[login]
	if !ok {
		return "", fmt.Errorf("%w: token", apperrors.ErrNotFound)
	}
	return token, nil
}

func (f *fakeTokens) SetToken(_ context.Context, login, token string) error {
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[login] = token
	f.sets++
	return nil
}

type storedActivity struct {
	activity  domain.Activity
	processed bool
}

type fakeStore struct {
	rows    []storedActivity
	deleted []string
	marked  []string
}

func (f *fakeStore) InsertActivity(_ context.Context, studentID string, a domain.Activity) (bool, error) {
	for _, row := range f.rows {
		if row.activity.ID == a.ID {
			return false, nil
		}
	}
	a.StudentID = studentID
	f.rows = append(f.rows, storedActivity{activity: a})
	return true, nil
}

func (f *fakeStore) ListUnprocessedActivities(context.Context) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, row := range f.rows {
		if !row.processed {
			out = append(out, row.activity)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkProcessed(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].activity.ID == id {
			f.rows[i].processed = true
		}
	}
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeStore) DeleteActivities(_ context.Context, studentID string) (int64, error) {
	kept := f.rows[:0]
	var n int64
	for _, row := range f.rows {
		if row.activity.StudentID == studentID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	f.deleted = append(f.deleted, studentID)
	return n, nil
}

type fakeProcessor struct {
	kind    string
	outcome feedout.MediaOutcome
	failOn  string
	calls   []string
	dirs    []string
}

func (p *fakeProcessor) Kind() string { return p.kind }

func (p *fakeProcessor) Process(_ context.Context, dir string, a domain.Activity, _ domain.MediaRequest) (feedout.MediaOutcome, error) {
	p.calls = append(p.calls, a.ID)
	p.dirs = append(p.dirs, dir)
	if a.ID == p.failOn {
		return feedout.MediaOutcome{}, errors.New("boom")
	}
	return p.outcome, nil
}
