package battle

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/pefman/health-duel/internal/models"
)

// Runner replays a match as a sequence of attacks, one per property.
type Runner struct {
	cfg     Config
	pacer   Pacer
	catalog *Catalog

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRunner builds a runner. nil arguments select the timer pacer, the built-in
// catalog and a time-seeded random source.
func NewRunner(cfg Config, pacer Pacer, catalog *Catalog, rnd *rand.Rand) *Runner {
	if cfg.Damage <= 0 {
		cfg.Damage = DefaultDamage
	}
	if cfg.StepDelay < 0 {
		cfg.StepDelay = 0
	}
	if pacer == nil {
		pacer = TimerPacer{}
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if rnd == nil && cfg.RandomMessages {
		rnd = newRNG()
	}
	return &Runner{cfg: cfg, pacer: pacer, catalog: catalog, rnd: rnd}
}

func (r *Runner) Config() Config { return r.cfg }

// Run plays the whole sequence. emit, when set, receives a copy of the state after
// start, after every attack and after the finish. If ctx is cancelled while pacing,
// Run stops and returns the partial state with ctx.Err().
func (r *Runner) Run(ctx context.Context, match models.MatchData, emit func(State)) (State, error) {
	if err := match.Validate(); err != nil {
		return State{}, err
	}
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	a, b := match.Participants()
	st := newState(a, b)
	st.IsStarted = true
	publish(emit, st)

	for i, p := range models.Properties {
		attacker := strings.TrimSpace(match.PropertyWinners[p])
		if attacker != a && attacker != b {
			attacker = a
		}
		defender := b
		if attacker == b {
			defender = a
		}

		remaining := ApplyDamage(st.HealthPoints[defender], r.cfg.Damage)
		st.HealthPoints[defender] = remaining
		attack, result := r.messages(p, attacker, defender, remaining)
		group := LogGroup{
			Step:      i + 1,
			Property:  p,
			Attacker:  attacker,
			Defender:  defender,
			Attack:    attack,
			Result:    result,
			Damage:    r.cfg.Damage,
			Remaining: remaining,
		}
		st.Logs = append([]LogGroup{group}, st.Logs...)
		st.CurrentStep = i + 1
		publish(emit, st)

		if err := r.pacer.Pause(ctx, r.cfg.StepDelay); err != nil {
			slog.DebugContext(ctx, "battle: stopped", "step", st.CurrentStep, "err", err)
			return st, err
		}
	}

	st.IsFinished = true
	st.Summary = r.catalog.SummaryMessage(st)
	publish(emit, st)
	return st, nil
}

func (r *Runner) messages(p models.Property, attacker, defender string, remaining int) (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rnd := r.rnd
	if !r.cfg.RandomMessages {
		rnd = nil
	}
	return r.catalog.AttackMessage(rnd, p, attacker, defender),
		r.catalog.ResultMessage(rnd, defender, r.cfg.Damage, remaining)
}

func publish(emit func(State), st State) {
	if emit != nil {
		emit(st.Clone())
	}
}
