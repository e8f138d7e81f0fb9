// Package profile assembles the profile page: the user record, their match history
// and the invite link they can share.
package profile

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pefman/health-duel/internal/fallback"
	"github.com/pefman/health-duel/internal/models"
)

const ShareBlurb = "Think you're healthier than me? Fill in the form and let's settle it in the underground arena!"

// Backend is the slice of the API client the viewer needs.
type Backend interface {
	FetchProfile(ctx context.Context, userID string) (models.Profile, error)
	FetchMatchHistory(ctx context.Context, userID string) ([]models.MatchSummary, error)
}

// HistoryEntry is a match row with the link back to its battle.
type HistoryEntry struct {
	models.MatchSummary
	BattlePath string
}

type View struct {
	Profile         models.Profile
	History         []HistoryEntry
	InviteLink      string
	ShareMessage    string
	ProfileFallback bool
	HistoryFallback bool
}

type Viewer struct {
	backend  Backend
	origin   string
	fallback fallback.Data
}

func NewViewer(backend Backend, origin string, fb fallback.Data) *Viewer {
	return &Viewer{backend: backend, origin: origin, fallback: fb}
}

// Load fetches the profile and history at the same time. Each one is replaced by its
// mock independently when the fetch fails.
func (v *Viewer) Load(ctx context.Context, userID string) View {
	var (
		view    View
		history []models.MatchSummary
		g       errgroup.Group
	)
	g.Go(func() error {
		p, err := v.backend.FetchProfile(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "profile: using fallback profile", "userId", userID, "err", err)
			p = v.fallback.ProfileFor(userID)
			view.ProfileFallback = true
		}
		view.Profile = p
		return nil
	})
	g.Go(func() error {
		h, err := v.backend.FetchMatchHistory(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "profile: using fallback history", "userId", userID, "err", err)
			h = v.fallback.History
			view.HistoryFallback = true
		}
		history = h
		return nil
	})
	_ = g.Wait()

	view.History = make([]HistoryEntry, 0, len(history))
	for _, m := range history {
		view.History = append(view.History, HistoryEntry{MatchSummary: m, BattlePath: BattlePath(m.MatchID)})
	}
	view.InviteLink = InviteLink(v.origin, userID)
	view.ShareMessage = ShareMessage(view.InviteLink)
	return view
}

// InviteLink builds the link a friend opens to answer the form against userID.
func InviteLink(origin, userID string) string {
	origin = strings.TrimRight(origin, "/")
	return origin + "/form?" + url.Values{"inviterId": {userID}}.Encode()
}

// ShareMessage is the clipboard text: the promotional blurb followed by the link.
func ShareMessage(link string) string {
	return ShareBlurb + "\n" + link
}

func BattlePath(matchID string) string {
	return "/battle?" + url.Values{"matchId": {matchID}}.Encode()
}
