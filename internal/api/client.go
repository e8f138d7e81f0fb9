package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pefman/health-duel/internal/models"
)

const (
	DefaultTimeout  = 8 * time.Second
	DefaultCacheTTL = 5 * time.Minute

	maxBody = 1 << 20
)

var ErrNotFound = errors.New("not found")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Config holds API configuration
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration // profile cache; 0 disables
}

// Client talks to the remote health-match backend. Every call is a single attempt;
// callers decide what to substitute on failure.
type Client struct {
	config Config
	http   *http.Client

	cacheMu      sync.RWMutex
	profileCache map[string]cachedProfile
	now          func() time.Time
}

type cachedProfile struct {
	profile models.Profile
	at      time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config:       cfg,
		http:         &http.Client{Timeout: cfg.Timeout},
		profileCache: make(map[string]cachedProfile),
		now:          time.Now,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	base := strings.TrimRight(c.config.BaseURL, "/")
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// SubmitProfile posts the form answers and returns the identifier the backend
// assigned to the new profile.
func (c *Client) SubmitProfile(ctx context.Context, in models.ProfileInput) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/profiles", in)
	if err != nil {
		return "", fmt.Errorf("submit profile: %w", err)
	}
	return decodeID(data)
}

// RequestMatch asks the backend to compare two profiles and returns the match id.
// An empty id without error means the backend accepted but did not assign one.
func (c *Client) RequestMatch(ctx context.Context, inviterID, inviteeID string) (string, error) {
	q := url.Values{}
	q.Set("inviterId", inviterID)
	q.Set("inviteeId", inviteeID)
	data, err := c.do(ctx, http.MethodGet, "/health-match-results?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("request match: %w", err)
	}
	return decodeMatchID(data)
}

func (c *Client) FetchMatch(ctx context.Context, matchID string) (models.MatchData, error) {
	if strings.TrimSpace(matchID) == "" {
		return models.MatchData{}, errors.New("fetch match: empty match id")
	}
	data, err := c.do(ctx, http.MethodGet, "/health-match-results/"+url.PathEscape(matchID), nil)
	if err != nil {
		return models.MatchData{}, fmt.Errorf("fetch match %s: %w", matchID, err)
	}
	return DecodeMatch(data)
}

// FetchLegacyMatch serves the old battle links that carried both user ids.
func (c *Client) FetchLegacyMatch(ctx context.Context, user1ID, user2ID string) (models.MatchData, error) {
	q := url.Values{}
	q.Set("user1Id", user1ID)
	q.Set("user2Id", user2ID)
	data, err := c.do(ctx, http.MethodGet, "/match?"+q.Encode(), nil)
	if err != nil {
		return models.MatchData{}, fmt.Errorf("fetch legacy match: %w", err)
	}
	return DecodeMatch(data)
}

func (c *Client) FetchProfile(ctx context.Context, userID string) (models.Profile, error) {
	if p, ok := c.cachedProfile(userID); ok {
		return p, nil
	}
	data, err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), nil)
	if err != nil {
		return models.Profile{}, fmt.Errorf("fetch profile %s: %w", userID, err)
	}
	p, err := decodeProfile(data)
	if err != nil {
		return models.Profile{}, err
	}
	if p.ID == "" {
		p.ID = userID
	}
	c.storeProfile(userID, p)
	return p, nil
}

func (c *Client) FetchMatchHistory(ctx context.Context, userID string) ([]models.MatchSummary, error) {
	q := url.Values{}
	q.Set("userId", userID)
	data, err := c.do(ctx, http.MethodGet, "/match-history?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch match history %s: %w", userID, err)
	}
	return decodeHistory(data)
}

func (c *Client) cachedProfile(id string) (models.Profile, bool) {
	if c.config.CacheTTL <= 0 {
		return models.Profile{}, false
	}
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	e, ok := c.profileCache[id]
	if !ok || c.now().Sub(e.at) >= c.config.CacheTTL {
		return models.Profile{}, false
	}
	return e.profile, true
}

func (c *Client) storeProfile(id string, p models.Profile) {
	if c.config.CacheTTL <= 0 {
		return
	}
	c.cacheMu.Lock()
	c.profileCache[id] = cachedProfile{profile: p, at: c.now()}
	c.cacheMu.Unlock()
}
