package stats

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Record is the local tally of finished battles for one participant.
type Record struct {
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
	LastPlay int64  `json:"lastPlay"`
}

// Tally counts outcomes of battles replayed by this server (in-memory).
type Tally struct {
	mu      sync.Mutex
	records map[string]*Record // key: lowercased name
	now     func() time.Time
}

func NewTally() *Tally {
	return &Tally{records: make(map[string]*Record), now: time.Now}
}

func (t *Tally) entry(name string) *Record {
	key := strings.ToLower(strings.TrimSpace(name))
	r, ok := t.records[key]
	if !ok {
		r = &Record{Name: name}
		t.records[key] = r
	}
	r.LastPlay = t.now().Unix()
	return r
}

// SaveOutcome records one finished battle. With draw set, winner and loser are
// just the two participants.
func (t *Tally) SaveOutcome(winner, loser string, draw bool) {
	if strings.TrimSpace(winner) == "" || strings.TrimSpace(loser) == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if draw {
		t.entry(winner).Draws++
		t.entry(loser).Draws++
		return
	}
	t.entry(winner).Wins++
	t.entry(loser).Losses++
}

func (t *Tally) Get(name string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.records[strings.ToLower(strings.TrimSpace(name))]; ok {
		return *r, true
	}
	return Record{Name: name}, false
}

// Leaders returns records ordered by wins, then fewest losses, then name.
func (t *Tally) Leaders(limit int) []Record {
	t.mu.Lock()
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, *r)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		if out[i].Losses != out[j].Losses {
			return out[i].Losses < out[j].Losses
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Reset clears the tally.
// Intended for tests and dev convenience.
func (t *Tally) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.records)
}
