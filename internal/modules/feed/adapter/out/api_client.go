package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/net/publicsuffix"

	"feedvault/internal/modules/feed/domain"
	feedout "feedvault/internal/modules/feed/port/out"
	apperrors "feedvault/internal/platform/errors"
)

const SessionCookie = "_brightwheel_v2"

type APIClientConfig struct {
	BaseURL       string
	ClientVersion string
	UserAgent     string
	Timeout       time.Duration
}

// HTTPFeedClient talks to the feed API. Every Authenticate call gets its own
// cookie jar so sessions never share state.
type HTTPFeedClient struct {
	baseURL   *url.URL
	version   string
	userAgent string
	timeout   time.Duration
	prompter  feedout.CredentialPrompter
	log       hclog.Logger
}

func NewHTTPFeedClient(cfg APIClientConfig, prompter feedout.CredentialPrompter, log hclog.Logger) (*HTTPFeedClient, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: api base url %q", apperrors.ErrInvalidInput, cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &HTTPFeedClient{
		baseURL:   base,
		version:   cfg.ClientVersion,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		prompter:  prompter,
		log:       log,
	}, nil
}

func (c *HTTPFeedClient) Authenticate(ctx context.Context, creds domain.Credentials) (feedout.Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	s := &apiSession{
		client: c,
		http:   &http.Client{Jar: jar, Timeout: c.timeout},
	}

	switch {
	case creds.CachedToken != "" && !creds.ForceLogin:
		c.log.Debug("using cached session token", "login", creds.Login)
		jar.SetCookies(c.baseURL, []*http.Cookie{{Name: SessionCookie, Value: creds.CachedToken, Path: "/"}})
	case creds.Headless:
		return nil, fmt.Errorf("%w: no cached token for %s", apperrors.ErrAuthenticationRequired, creds.Login)
	default:
		if err := s.login(ctx, creds.Login); err != nil {
			return nil, err
		}
	}

	var me struct {
		ObjectID string `json:"object_id"`
	}
	if err := s.call(ctx, http.MethodGet, "users/me", nil, nil, false, &me); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	if me.ObjectID == "" {
		return nil, fmt.Errorf("get current user: %w: response without object_id", apperrors.ErrInvalidInput)
	}
	s.guardianID = me.ObjectID
	return s, nil
}

type apiSession struct {
	client     *HTTPFeedClient
	http       *http.Client
	guardianID string
}

type loginUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginBody struct {
	User    loginUser `json:"user"`
	MFACode string    `json:"2fa_code,omitempty"`
}

func (s *apiSession) login(ctx context.Context, login string) error {
	if s.client.prompter == nil {
		return fmt.Errorf("%w: no credential prompter", apperrors.ErrAuthenticationRequired)
	}
	password, err := s.client.prompter.Password(ctx, login)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	body := loginBody{User: loginUser{Email: login, Password: password}}

	var start struct {
		MFARequired bool `json:"2fa_required"`
	}
	if err := s.call(ctx, http.MethodPost, "sessions/start", nil, body, true, &start); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if start.MFARequired {
		code, err := s.client.prompter.MFACode(ctx, login)
		if err != nil {
			return fmt.Errorf("read mfa code: %w", err)
		}
		body.MFACode = strings.TrimSpace(code)
	}
	if err := s.call(ctx, http.MethodPost, "sessions", nil, body, true, nil); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	s.client.log.Info("logged in", "login", login, "mfa", start.MFARequired)
	return nil
}

func (s *apiSession) GuardianID() string {
	return s.guardianID
}

func (s *apiSession) CurrentSessionToken() string {
	for _, cookie := range s.http.Jar.Cookies(s.client.baseURL) {
		if cookie.Name == SessionCookie {
			return cookie.Value
		}
	}
	return ""
}

func (s *apiSession) ListStudents(ctx context.Context) ([]domain.Student, error) {
	var resp struct {
		Students []struct {
			Student struct {
				ObjectID  string `json:"object_id"`
				FirstName string `json:"first_name"`
				LastName  string `json:"last_name"`
			} `json:"student"`
		} `json:"students"`
	}
	path := "guardians/" + s.guardianID + "/students"
	if err := s.call(ctx, http.MethodGet, path, nil, nil, false, &resp); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	out := make([]domain.Student, 0, len(resp.Students))
	for _, entry := range resp.Students {
		out = append(out, domain.Student{
			ID:        entry.Student.ObjectID,
			FirstName: entry.Student.FirstName,
			LastName:  entry.Student.LastName,
		})
	}
	return out, nil
}

func (s *apiSession) ListActivities(ctx context.Context, query domain.ActivityQuery) ([]domain.Activity, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("page_size", strconv.Itoa(query.PageSize))
	if query.StartDate != "" {
		params.Set("start_date", query.StartDate)
	}
	if query.EndDate != "" {
		params.Set("end_date", query.EndDate)
	}
	var resp struct {
		Activities []json.RawMessage `json:"activities"`
	}
	path := "students/" + query.StudentID + "/activities"
	if err := s.call(ctx, http.MethodGet, path, params, nil, false, &resp); err != nil {
		return nil, fmt.Errorf("list activities page %d: %w", query.Page, err)
	}
	out := make([]domain.Activity, 0, len(resp.Activities))
	for _, raw := range resp.Activities {
		a, err := domain.DecodeActivity(raw)
		if err != nil {
			return nil, err
		}
		a.StudentID = query.StudentID
		out = append(out, a)
	}
	return out, nil
}

func (s *apiSession) call(ctx context.Context, method, path string, params url.Values, body any, authHeaders bool, out any) error {
	endpoint := s.client.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: params.Encode()})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.client.userAgent != "" {
		req.Header.Set("User-Agent", s.client.userAgent)
	}
	if authHeaders {
		origin := s.client.baseURL.Scheme + "://" + s.client.baseURL.Host
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-Version", s.client.version)
		req.Header.Set("X-Client-Name", "web")
		req.Header.Set("Origin", origin)
		req.Header.Set("Referer", origin+"/sign-in")
	}

	s.client.log.Trace("api request", "method", method, "path", path)
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apperrors.HTTPError{
			Method:     method,
			URL:        endpoint.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
