package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pefman/health-duel/internal/models"
)

type profileRecord struct {
	Profile models.Profile      `json:"profile"`
	Input   models.ProfileInput `json:"input"`
}

// MatchRecord is one stored comparison.
type MatchRecord struct {
	ID        string           `json:"id"`
	InviterID string           `json:"inviterId"`
	InviteeID string           `json:"inviteeId"`
	WinnerID  string           `json:"winnerId"`
	Created   int64            `json:"created"`
	Data      models.MatchData `json:"data"`
}

// store keeps profiles and matches in memory. When dir is set, match records are
// also written to disk and lazily read back.
type store struct {
	mu       sync.Mutex
	profiles map[string]*profileRecord
	matches  map[string]*MatchRecord
	dir      string
	now      func() time.Time
}

func newStore(dir string) *store {
	return &store{
		profiles: map[string]*profileRecord{},
		matches:  map[string]*MatchRecord{},
		dir:      dir,
		now:      time.Now,
	}
}

func (s *store) addProfile(in models.ProfileInput) models.Profile {
	p := models.Profile{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Rank:      rankFor(in),
		CreatedAt: s.now().Unix(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = &profileRecord{Profile: p, Input: in}
	return p
}

func (s *store) profile(id string) (*profileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	return p, ok
}

func (s *store) addMatch(inviterID, inviteeID string, data models.MatchData) *MatchRecord {
	rec := &MatchRecord{
		ID:        "match_" + uuid.NewString(),
		InviterID: inviterID,
		InviteeID: inviteeID,
		Created:   s.now().Unix(),
		Data:      data,
	}
	s.mu.Lock()
	// the inviter keeps its name, the invitee may have been suffixed
	rec.WinnerID = inviteeID
	if p, ok := s.profiles[inviterID]; ok && p.Profile.Name == data.WinnerInfo.Name {
		rec.WinnerID = inviterID
	}
	s.matches[rec.ID] = rec
	s.mu.Unlock()
	saveMatchRecord(s.dir, rec)
	return rec
}

func (s *store) match(id string) (*MatchRecord, bool) {
	s.mu.Lock()
	rec, ok := s.matches[id]
	s.mu.Unlock()
	if ok {
		return rec, true
	}
	if rec = loadMatchRecord(s.dir, id); rec != nil {
		s.mu.Lock()
		s.matches[rec.ID] = rec
		s.mu.Unlock()
		return rec, true
	}
	return nil, false
}

// history lists the user's matches, newest first.
func (s *store) history(userID string) []models.MatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MatchSummary{}
	for _, rec := range s.matches {
		var other string
		switch userID {
		case rec.InviterID:
			other = rec.InviteeID
		case rec.InviteeID:
			other = rec.InviterID
		default:
			continue
		}
		opp := other
		if p, ok := s.profiles[other]; ok {
			opp = p.Profile.Name
		}
		result := "lose"
		if rec.WinnerID == userID {
			result = "win"
		}
		out = append(out, models.MatchSummary{MatchID: rec.ID, OpponentName: opp, Result: result, PlayedAt: rec.Created})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayedAt == out[j].PlayedAt {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].PlayedAt > out[j].PlayedAt
	})
	return out
}

func rankFor(in models.ProfileInput) string {
	bad := in.SmokeCount/10 + in.DrinkingCount/3
	switch {
	case bad == 0 && in.ExerciseCount >= 3:
		return "A+"
	case bad <= 1:
		return "B"
	default:
		return "C"
	}
}

// ============ Optional local persistence for match records (dev/debug) ============
// Controlled by env MATCH_LOG_DIR.

func getMatchPersistDir() string {
	dir := strings.TrimSpace(os.Getenv("MATCH_LOG_DIR"))
	if dir == "" {
		return ""
	}
	if !filepath.IsAbs(dir) {
		// make relative paths anchored to cwd
		abs, err := filepath.Abs(dir)
		if err == nil {
			dir = abs
		}
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func sanitizeIDForFile(id string) string {
	// keep alnum, dash, underscore; replace others with '-'
	b := make([]rune, 0, len(id))
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b = append(b, r)
		} else {
			b = append(b, '-')
		}
	}
	out := strings.Trim(strings.ReplaceAll(string(b), "--", "-"), "-")
	if out == "" {
		out = "match"
	}
	return out
}

func matchFilePath(dir, id string) string {
	return filepath.Join(dir, sanitizeIDForFile(id)+".json")
}

func saveMatchRecord(dir string, rec *MatchRecord) {
	if dir == "" || rec == nil {
		return
	}
	path := matchFilePath(dir, rec.ID)
	// write atomically
	tmp := path + ".tmp"
	data, _ := json.MarshalIndent(rec, "", "  ")
	_ = os.WriteFile(tmp, data, 0o644)
	_ = os.Rename(tmp, path)
}

func loadMatchRecord(dir, id string) *MatchRecord {
	if dir == "" || strings.TrimSpace(id) == "" {
		return nil
	}
	data, err := os.ReadFile(matchFilePath(dir, id))
	if err != nil {
		return nil
	}
	var rec MatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = id
	}
	return &rec
}
