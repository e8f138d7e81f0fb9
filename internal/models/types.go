package models

import (
	"errors"
	"fmt"
	"strings"
)

// ========================= Domain Models =========================
// Canonical shapes used across the app. Backend responses are normalized into these.

// Property is one of the health dimensions compared in a battle.
type Property string

const (
	Height        Property = "height"
	Weight        Property = "weight"
	ExerciseCount Property = "exerciseCount"
	SmokeCount    Property = "smokeCount"
	DrinkingCount Property = "drinkingCount"
)

// Properties is the fixed order in which a battle replays the comparison.
var Properties = []Property{Height, Weight, ExerciseCount, SmokeCount, DrinkingCount}

func (p Property) Valid() bool {
	for _, q := range Properties {
		if p == q {
			return true
		}
	}
	return false
}

// Label is the human readable name used in battle logs.
func (p Property) Label() string {
	switch p {
	case Height:
		return "height"
	case Weight:
		return "weight"
	case ExerciseCount:
		return "weekly workouts"
	case SmokeCount:
		return "daily cigarettes"
	case DrinkingCount:
		return "weekly drinks"
	}
	return string(p)
}

type HealthInfo struct {
	Name          string  `json:"name"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	ExerciseCount int     `json:"exerciseCount"`
	SmokeCount    int     `json:"smokeCount"`
	DrinkingCount int     `json:"drinkingCount"`
}

// Value returns the numeric answer for a property.
func (h HealthInfo) Value(p Property) float64 {
	switch p {
	case Height:
		return h.Height
	case Weight:
		return h.Weight
	case ExerciseCount:
		return float64(h.ExerciseCount)
	case SmokeCount:
		return float64(h.SmokeCount)
	case DrinkingCount:
		return float64(h.DrinkingCount)
	}
	return 0
}

var ErrInvalidMatch = errors.New("invalid match data")

// MatchData is the result of one health comparison. Immutable once fetched.
type MatchData struct {
	PropertyWinners map[Property]string `json:"propertyWinners"`
	WinnerInfo      HealthInfo          `json:"winnerInfo"`
	LoserInfo       HealthInfo          `json:"loserInfo"`
}

// Participants returns the two trimmed participant names, winner first.
func (m MatchData) Participants() (string, string) {
	return strings.TrimSpace(m.WinnerInfo.Name), strings.TrimSpace(m.LoserInfo.Name)
}

// Validate checks that the match names two distinct participants.
func (m MatchData) Validate() error {
	a, b := m.Participants()
	if a == "" || b == "" {
		return fmt.Errorf("%w: missing participant name", ErrInvalidMatch)
	}
	if a == b {
		return fmt.Errorf("%w: participants share the name %q", ErrInvalidMatch, a)
	}
	return nil
}

// Profile is a user record held by the backend.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rank      string `json:"rank,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// MatchSummary is one row of a user's match history.
type MatchSummary struct {
	MatchID      string `json:"matchId"`
	OpponentName string `json:"opponentName"`
	Result       string `json:"result,omitempty"` // "win" or "lose"
	PlayedAt     int64  `json:"playedAt,omitempty"`
}

// ProfileInput is the payload submitted by the form. Decoy answers never reach it.
type ProfileInput struct {
	Name          string  `json:"name"`
	Height        float64 `json:"height"`
	Weight        float64 `json:"weight"`
	ExerciseCount int     `json:"exerciseCount"`
	SmokeCount    int     `json:"smokeCount"`
	DrinkingCount int     `json:"drinkingCount"`
}

// Info converts a submission into the shape used inside match data.
func (p ProfileInput) Info() HealthInfo {
	return HealthInfo{
		Name:          p.Name,
		Height:        p.Height,
		Weight:        p.Weight,
		ExerciseCount: p.ExerciseCount,
		SmokeCount:    p.SmokeCount,
		DrinkingCount: p.DrinkingCount,
	}
}

// WebSocket message structure
type WsMsg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
