package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/config"
	"github.com/bored-engineer/hackeroni-slack-disclosure-bot/internal/errors"

	"github.com/PuerkitoBio/goquery"
)

const csrfHeader = "x-csrf-token"

// Session owns the scraping HTTP client: its cookie jar, its User-Agent and
// the rotating CSRF token HackerOne requires on GraphQL requests. The token
// is only ever mutated here; other packages go through Do.
type Session struct {
	client     *http.Client
	landingURL string
	userAgent  string

	mu          sync.Mutex
	token       string
	refreshedAt time.Time
}

func New(cfg config.HacktivityConfig) (*Session, error) {
	timeout, err := config.DurationOrDefault(cfg.RequestTimeout, config.DefaultHacktivityRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse request timeout: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	landingURL := cfg.LandingURL
	if landingURL == "" {
		landingURL = config.DefaultHacktivityLandingURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultHacktivityUserAgent
	}

	return &Session{
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		landingURL: landingURL,
		userAgent:  userAgent,
	}, nil
}

// EnsureAuthenticated refreshes the CSRF token when it is missing or has been
// invalidated. It is idempotent: a valid token is left untouched.
func (s *Session) EnsureAuthenticated(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" {
		return nil
	}
	return s.refresh(ctx)
}

// Invalidate marks the token stale so the next EnsureAuthenticated performs a
// full refresh.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Do sends an authenticated request: User-Agent and the current CSRF token
// are attached before dispatch.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	req.Header.Set("User-Agent", s.userAgent)
	if token != "" {
		req.Header.Set(csrfHeader, token)
	}
	return s.client.Do(req)
}

// LastRefreshed reports when the token was last rotated. Zero until the first
// successful refresh.
func (s *Session) LastRefreshed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshedAt
}

func (s *Session) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.landingURL, nil)
	if err != nil {
		return errors.Wrap(err, "build landing page request")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %v: %w", s.landingURL, err, errors.ErrAuthFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.AuthFetch(fmt.Sprintf("get %s: unexpected status %d", s.landingURL, resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse landing page: %v: %w", err, errors.ErrAuthParse)
	}

	token, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content")
	if !ok || token == "" {
		return errors.AuthParse("csrf-token meta tag missing from landing page")
	}

	s.mu.Lock()
	s.token = token
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	slog.Debug("CSRF token refreshed", "landing_url", s.landingURL)
	return nil
}
