package service

import (
	"context"
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"feedvault/internal/modules/feed/domain"
	feedout "feedvault/internal/modules/feed/port/out"
	"feedvault/internal/platform/clock"
	apperrors "feedvault/internal/platform/errors"
)

type MetadataService struct {
	auth     feedout.Authenticator
	tokens   feedout.TokenStore
	store    feedout.ActivityStore
	clock    clock.Clock
	log      hclog.Logger
	pageSize int
}

func NewMetadataService(auth feedout.Authenticator, tokens feedout.TokenStore, store feedout.ActivityStore, clk clock.Clock, log hclog.Logger) *MetadataService {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &MetadataService{
		auth:     auth,
		tokens:   tokens,
		store:    store,
		clock:    clk,
		log:      log,
		pageSize: domain.DefaultPageSize,
	}
}

func (s *MetadataService) Sync(ctx context.Context, req domain.MetadataRequest) (domain.MetadataCounts, error) {
	cached, err := s.tokens.GetToken(ctx, req.Login)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return domain.MetadataCounts{}, err
	}

	session, err := s.auth.Authenticate(ctx, domain.Credentials{
		Login:       req.Login,
		CachedToken: cached,
		Headless:    req.Headless,
		ForceLogin:  req.IgnoreCached,
	})
	if err != nil {
		return domain.MetadataCounts{}, err
	}
	if token := session.CurrentSessionToken(); token != "" && token != cached {
		if err := s.tokens.SetToken(ctx, req.Login, token); err != nil {
			return domain.MetadataCounts{}, err
		}
		s.log.Debug("stored session token", "login", req.Login)
	}

	students, err := session.ListStudents(ctx)
	if err != nil {
		return domain.MetadataCounts{}, err
	}
	student, err := domain.MatchStudent(students, req.Student)
	if err != nil {
		return domain.MetadataCounts{}, err
	}
	counts := domain.MetadataCounts{StudentID: student.ID}
	s.log.Info("selected student", "id", student.ID, "name", student.FullName())

	if req.ClearExisting {
		deleted, err := s.store.DeleteActivities(ctx, student.ID)
		if err != nil {
			return counts, err
		}
		s.log.Info("cleared stored activities", "student", student.ID, "deleted", deleted)
	}

	startDate := req.StartDate
	if startDate == "" {
		startDate = clock.Today(s.clock, domain.DateLayout)
	}

	for page := 0; ; page++ {
		s.log.Info("fetching activities", "page", page)
		batch, err := session.ListActivities(ctx, domain.ActivityQuery{
			StudentID: student.ID,
			StartDate: startDate,
			EndDate:   req.EndDate,
			Page:      page,
			PageSize:  s.pageSize,
		})
		if err != nil {
			return counts, err
		}
		counts.Pages++
		for _, activity := range batch {
			if activity.AwaitingTranscode() {
				counts.Skipped++
				continue
			}
			added, err := s.store.InsertActivity(ctx, student.ID, activity)
			if err != nil {
				return counts, fmt.Errorf("store activity: %w", err)
			}
			if added {
				counts.Added++
			}
		}
		counts.Total += len(batch)
		if len(batch) < s.pageSize {
			break
		}
	}
	s.log.Info("metadata sync finished", "student", student.ID, "skipped", counts.Skipped, "added", counts.Added, "total", counts.Total)
	return counts, nil
}
