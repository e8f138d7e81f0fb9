package battle

import (
	"maps"
	"time"

	"github.com/pefman/health-duel/internal/models"
)

const (
	MaxHealth = 100

	DefaultDamage    = 40
	DefaultStepDelay = 2 * time.Second
)

// Config holds the pacing and scoring constants of a battle. Earlier revisions of the
// battle page disagreed on delay (1s, 2s, 3.5s) and on random vs fixed messages, so
// both are settings.
type Config struct {
	Damage         int
	StepDelay      time.Duration
	RandomMessages bool
}

func DefaultConfig() Config {
	return Config{Damage: DefaultDamage, StepDelay: DefaultStepDelay, RandomMessages: true}
}

// LogGroup narrates one attack: the flavor line, the damage line and the defender's
// remaining health.
type LogGroup struct {
	Step      int             `json:"step"`
	Property  models.Property `json:"property"`
	Attacker  string          `json:"attacker"`
	Defender  string          `json:"defender"`
	Attack    string          `json:"attack"`
	Result    string          `json:"result"`
	Damage    int             `json:"damage"`
	Remaining int             `json:"remaining"`
}

// State is the mutable view of a battle in progress. Only the runner writes to it.
type State struct {
	CurrentStep  int            `json:"currentStep"`
	IsStarted    bool           `json:"isStarted"`
	IsFinished   bool           `json:"isFinished"`
	HealthPoints map[string]int `json:"healthPoints"`
	Logs         []LogGroup     `json:"logs"` // most recent first
	Summary      string         `json:"summary,omitempty"`
}

func newState(a, b string) State {
	return State{
		HealthPoints: map[string]int{a: MaxHealth, b: MaxHealth},
		Logs:         []LogGroup{},
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s State) Clone() State {
	out := s
	out.HealthPoints = maps.Clone(s.HealthPoints)
	out.Logs = append([]LogGroup(nil), s.Logs...)
	return out
}

func clamp(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApplyDamage subtracts damage from health and keeps the result in [0, MaxHealth].
func ApplyDamage(health, damage int) int {
	return clamp(0, MaxHealth, health-damage)
}

// Outcome reports the participant left with more health. draw is true when both
// gauges are equal.
func Outcome(s State) (winner, loser string, draw bool) {
	names := make([]string, 0, 2)
	for name := range s.HealthPoints {
		names = append(names, name)
	}
	if len(names) != 2 {
		return "", "", true
	}
	a, b := names[0], names[1]
	switch ha, hb := s.HealthPoints[a], s.HealthPoints[b]; {
	case ha > hb:
		return a, b, false
	case hb > ha:
		return b, a, false
	}
	return "", "", true
}
