package main

import (
	"math"

	"github.com/pefman/health-duel/internal/models"
)

const idealBMI = 22.0

// compare decides every property between two profiles and orders them into winner
// and loser by the number of properties won. Ties go to the inviter.
func compare(inviter, invitee models.HealthInfo) models.MatchData {
	winners := make(map[models.Property]string, len(models.Properties))
	score := map[string]int{}
	for _, p := range models.Properties {
		w := inviter.Name
		if beats(p, invitee, inviter) {
			w = invitee.Name
		}
		winners[p] = w
		score[w]++
	}
	m := models.MatchData{PropertyWinners: winners, WinnerInfo: inviter, LoserInfo: invitee}
	if score[invitee.Name] > score[inviter.Name] {
		m.WinnerInfo, m.LoserInfo = invitee, inviter
	}
	return m
}

// beats reports whether a is strictly better than b on p.
func beats(p models.Property, a, b models.HealthInfo) bool {
	switch p {
	case models.Weight:
		return bmiDistance(a) < bmiDistance(b)
	case models.Height, models.ExerciseCount:
		return a.Value(p) > b.Value(p)
	case models.SmokeCount, models.DrinkingCount:
		return a.Value(p) < b.Value(p)
	}
	return false
}

func bmiDistance(h models.HealthInfo) float64 {
	if h.Height <= 0 {
		return math.Inf(1)
	}
	m := h.Height / 100
	return math.Abs(h.Weight/(m*m) - idealBMI)
}
