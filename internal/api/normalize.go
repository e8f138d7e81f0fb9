package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pefman/health-duel/internal/models"
)

// The backend changed field names between revisions (match_id vs matchId,
// opponent_name vs opponentName, workoutCount vs exerciseCount...). Every response
// goes through one of the adapters below so the rest of the app only sees the
// canonical models.

type rawObject map[string]json.RawMessage

func decodeObject(data []byte) (rawObject, error) {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return obj, nil
}

// first returns the value of the first key present in obj.
func (o rawObject) first(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := o[k]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func (o rawObject) str(keys ...string) string {
	v, ok := o.first(keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// ids are sometimes plain numbers
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

func (o rawObject) num(keys ...string) float64 {
	v, ok := o.first(keys...)
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

func (o rawObject) integer(keys ...string) int64 { return int64(o.num(keys...)) }

func (o rawObject) object(keys ...string) rawObject {
	v, ok := o.first(keys...)
	if !ok {
		return rawObject{}
	}
	obj, err := decodeObject(v)
	if err != nil {
		return rawObject{}
	}
	return obj
}

// unwrap returns the "data" envelope when the backend wrapped its payload. An outer
// object that already carries one of keys is not an envelope and is kept as is.
func unwrap(data []byte, keys ...string) []byte {
	obj, err := decodeObject(data)
	if err != nil {
		return data
	}
	if _, ok := obj.first(keys...); ok {
		return data
	}
	if inner, ok := obj.first("data", "result"); ok && len(inner) > 0 && inner[0] == '{' {
		return inner
	}
	return data
}

func normalizeHealthInfo(o rawObject) models.HealthInfo {
	return models.HealthInfo{
		Name:          o.str(nameKeys...),
		Height:        o.num("height"),
		Weight:        o.num("weight"),
		ExerciseCount: int(o.num("exerciseCount", "exercise_count", "workoutCount", "workout_count")),
		SmokeCount:    int(o.num("smokeCount", "smoke_count", "smokingCount", "smoking_count")),
		DrinkingCount: int(o.num("drinkingCount", "drinking_count")),
	}
}

var (
	matchKeys   = []string{"propertyWinners", "property_winners", "winnerInfo", "winner_info", "winner", "loserInfo", "loser_info", "loser"}
	profileKeys = []string{"id", "userId", "user_id", "name", "nickname", "userName", "user_name"}
	idKeys      = []string{"inviteeId", "invitee_id", "id", "userId", "user_id", "profileId", "profile_id"}
	matchIDKeys = []string{"matchId", "match_id", "id"}
	nameKeys    = []string{"name", "nickname", "userName", "user_name"}
)

var propertyAliases = map[string]models.Property{
	"height":         models.Height,
	"weight":         models.Weight,
	"exerciseCount":  models.ExerciseCount,
	"exercise_count": models.ExerciseCount,
	"workoutCount":   models.ExerciseCount,
	"workout_count":  models.ExerciseCount,
	"smokeCount":     models.SmokeCount,
	"smoke_count":    models.SmokeCount,
	"smokingCount":   models.SmokeCount,
	"smoking_count":  models.SmokeCount,
	"drinkingCount":  models.DrinkingCount,
	"drinking_count": models.DrinkingCount,
}

// DecodeMatch normalizes any known match-result shape into MatchData.
func DecodeMatch(data []byte) (models.MatchData, error) {
	obj, err := decodeObject(unwrap(data, matchKeys...))
	if err != nil {
		return models.MatchData{}, fmt.Errorf("decode match: %w", err)
	}
	m := models.MatchData{
		PropertyWinners: map[models.Property]string{},
		WinnerInfo:      normalizeHealthInfo(obj.object("winnerInfo", "winner_info", "winner")),
		LoserInfo:       normalizeHealthInfo(obj.object("loserInfo", "loser_info", "loser")),
	}
	winners := obj.object("propertyWinners", "property_winners")
	for k := range winners {
		p, ok := propertyAliases[k]
		if !ok {
			continue
		}
		m.PropertyWinners[p] = winners.str(k)
	}
	if err := m.Validate(); err != nil {
		return models.MatchData{}, err
	}
	return m, nil
}

func decodeProfile(data []byte) (models.Profile, error) {
	obj, err := decodeObject(unwrap(data, profileKeys...))
	if err != nil {
		return models.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return models.Profile{
		ID:        obj.str("id", "userId", "user_id"),
		Name:      obj.str(nameKeys...),
		Rank:      obj.str("rank", "grade"),
		CreatedAt: obj.integer("createdAt", "created_at"),
	}, nil
}

func normalizeMatchSummary(o rawObject) models.MatchSummary {
	return models.MatchSummary{
		MatchID:      o.str("matchId", "match_id", "id"),
		OpponentName: o.str("opponentName", "opponent_name", "opponent"),
		Result:       strings.ToLower(o.str("result", "outcome")),
		PlayedAt:     o.integer("playedAt", "played_at", "createdAt", "created_at"),
	}
}

// decodeHistory accepts either a bare array or an object wrapping one under
// "matches", "history" or "data".
func decodeHistory(data []byte) ([]models.MatchSummary, error) {
	var rows []rawObject
	if err := json.Unmarshal(data, &rows); err != nil {
		obj, oerr := decodeObject(data)
		if oerr != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		inner, ok := obj.first("matches", "history", "data", "results")
		if !ok {
			return nil, fmt.Errorf("decode history: no match list in response")
		}
		if err := json.Unmarshal(inner, &rows); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	out := make([]models.MatchSummary, 0, len(rows))
	for _, r := range rows {
		if s := normalizeMatchSummary(r); s.MatchID != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// decodeID extracts the identifier returned by a profile submission.
func decodeID(data []byte) (string, error) {
	obj, err := decodeObject(unwrap(data, idKeys...))
	if err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	id := obj.str(idKeys...)
	if id == "" {
		return "", fmt.Errorf("decode id: no identifier in response")
	}
	return id, nil
}

func decodeMatchID(data []byte) (string, error) {
	obj, err := decodeObject(unwrap(data, matchIDKeys...))
	if err != nil {
		return "", fmt.Errorf("decode match id: %w", err)
	}
	return obj.str(matchIDKeys...), nil
}
