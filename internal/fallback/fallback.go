// Package fallback holds the fixed records shown when the backend cannot be reached.
package fallback

import (
	"github.com/pefman/health-duel/internal/models"
)

// Data bundles the substitutes handed to each view at construction.
type Data struct {
	Match   models.MatchData
	Profile models.Profile
	History []models.MatchSummary
}

// Default returns the built-in mock records. The winner takes every property but
// exercise, so a finished battle ends 60 to 0 with the default damage.
func Default() Data {
	winner := models.HealthInfo{
		Name:          "Alex",
		Height:        178,
		Weight:        72,
		ExerciseCount: 2,
		SmokeCount:    0,
		DrinkingCount: 1,
	}
	loser := models.HealthInfo{
		Name:          "Sam",
		Height:        169,
		Weight:        88,
		ExerciseCount: 5,
		SmokeCount:    12,
		DrinkingCount: 4,
	}
	return Data{
		Match: models.MatchData{
			PropertyWinners: map[models.Property]string{
				models.Height:        winner.Name,
				models.Weight:        winner.Name,
				models.ExerciseCount: loser.Name,
				models.SmokeCount:    winner.Name,
				models.DrinkingCount: winner.Name,
			},
			WinnerInfo: winner,
			LoserInfo:  loser,
		},
		Profile: models.Profile{ID: "guest", Name: "Guest", Rank: "A+"},
		History: []models.MatchSummary{
			{MatchID: "mock-match-1", OpponentName: "Sam", Result: "win"},
			{MatchID: "mock-match-2", OpponentName: "Jordan", Result: "lose"},
		},
	}
}

// ProfileFor returns the mock profile relabelled for the requested user.
func (d Data) ProfileFor(userID string) models.Profile {
	p := d.Profile
	if userID != "" {
		p.ID = userID
		p.Name = userID
	}
	return p
}
