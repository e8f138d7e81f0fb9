package battle

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pefman/health-duel/internal/api"
	"github.com/pefman/health-duel/internal/models"
)

// Fetcher is the part of the backend client the battle view needs.
type Fetcher interface {
	FetchMatch(ctx context.Context, matchID string) (models.MatchData, error)
	FetchLegacyMatch(ctx context.Context, user1ID, user2ID string) (models.MatchData, error)
}

// Query is what a battle link can carry. matchId is current; user1Id/user2Id and an
// inline battleData blob come from older links.
type Query struct {
	MatchID    string
	User1ID    string
	User2ID    string
	BattleData string
}

func ParseQuery(v url.Values) Query {
	return Query{
		MatchID:    strings.TrimSpace(v.Get("matchId")),
		User1ID:    strings.TrimSpace(v.Get("user1Id")),
		User2ID:    strings.TrimSpace(v.Get("user2Id")),
		BattleData: v.Get("battleData"),
	}
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.MatchID != "" {
		v.Set("matchId", q.MatchID)
	}
	if q.User1ID != "" {
		v.Set("user1Id", q.User1ID)
	}
	if q.User2ID != "" {
		v.Set("user2Id", q.User2ID)
	}
	if q.BattleData != "" {
		v.Set("battleData", q.BattleData)
	}
	return v
}

// Source tells where the match data of a battle came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceInline   Source = "inline"
	SourceFallback Source = "fallback"
)

var errNoMatchRef = errors.New("no match reference in query")

// Resolve obtains the match data for a battle link. Any failure is logged and the
// fallback match is returned instead; the caller never sees an error.
func Resolve(ctx context.Context, f Fetcher, q Query, fallback models.MatchData) (models.MatchData, Source) {
	m, src, err := resolve(ctx, f, q)
	if err == nil {
		return m, src
	}
	slog.WarnContext(ctx, "battle: using fallback match", "matchId", q.MatchID, "err", err)
	return fallback, SourceFallback
}

func resolve(ctx context.Context, f Fetcher, q Query) (models.MatchData, Source, error) {
	switch {
	case q.MatchID != "":
		m, err := f.FetchMatch(ctx, q.MatchID)
		return m, SourceRemote, err
	case q.BattleData != "":
		m, err := api.DecodeMatch([]byte(q.BattleData))
		return m, SourceInline, err
	case q.User1ID != "" && q.User2ID != "":
		m, err := f.FetchLegacyMatch(ctx, q.User1ID, q.User2ID)
		return m, SourceRemote, err
	}
	return models.MatchData{}, "", errNoMatchRef
}
