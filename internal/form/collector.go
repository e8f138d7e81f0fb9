package form

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pefman/health-duel/internal/models"
)

// Backend is the slice of the API client the form needs.
type Backend interface {
	SubmitProfile(ctx context.Context, in models.ProfileInput) (string, error)
	RequestMatch(ctx context.Context, inviterID, inviteeID string) (string, error)
}

// Result is where the browser goes after a successful submission.
type Result struct {
	UserID   string
	MatchID  string
	Redirect string
}

type Collector struct {
	backend Backend
	now     func() time.Time
}

func NewCollector(backend Backend) *Collector {
	return &Collector{backend: backend, now: time.Now}
}

// Submit sends the answers and, when the user came through an invite, asks for the
// match against the inviter. Without an inviter the user lands on their own profile
// so they can share an invite link.
func (c *Collector) Submit(ctx context.Context, inviterID string, a Answers) (Result, error) {
	in, err := a.Payload()
	if err != nil {
		return Result{}, err
	}
	userID, err := c.backend.SubmitProfile(ctx, in)
	if err != nil {
		return Result{}, err
	}
	res := Result{UserID: userID}

	inviterID = strings.TrimSpace(inviterID)
	if inviterID == "" || inviterID == userID {
		res.Redirect = "/profile/" + url.PathEscape(userID)
		return res, nil
	}

	matchID, err := c.backend.RequestMatch(ctx, inviterID, userID)
	if err != nil {
		return res, fmt.Errorf("match with %s: %w", inviterID, err)
	}
	if matchID == "" {
		matchID = "match_" + strconv.FormatInt(c.now().UnixMilli(), 10)
		slog.InfoContext(ctx, "form: backend returned no match id, using temporary one", "matchId", matchID)
	}
	res.MatchID = matchID
	res.Redirect = "/battle?" + url.Values{"matchId": {matchID}}.Encode()
	return res, nil
}
