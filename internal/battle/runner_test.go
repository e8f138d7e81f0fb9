package battle

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/pefman/health-duel/internal/fallback"
	"github.com/pefman/health-duel/internal/models"
)

var noPause = PacerFunc(func(ctx context.Context, d time.Duration) error { return ctx.Err() })

func fixedRunner() *Runner {
	return NewRunner(Config{Damage: DefaultDamage}, noPause, nil, nil)
}

func TestRunFallbackMatch(t *testing.T) {
	m := fallback.Default().Match
	var states []State
	final, err := fixedRunner().Run(context.Background(), m, func(s State) { states = append(states, s) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := final.HealthPoints["Alex"]; got != 60 {
		t.Fatalf("Alex health = %d, want 60", got)
	}
	if got := final.HealthPoints["Sam"]; got != 0 {
		t.Fatalf("Sam health = %d, want 0", got)
	}
	if !final.IsStarted || !final.IsFinished {
		t.Fatalf("final flags started=%v finished=%v", final.IsStarted, final.IsFinished)
	}
	if final.CurrentStep != len(models.Properties) {
		t.Fatalf("current step = %d", final.CurrentStep)
	}
	if len(final.Logs) != len(models.Properties) {
		t.Fatalf("log groups = %d, want %d", len(final.Logs), len(models.Properties))
	}
	// start, one per property, finish
	if len(states) != len(models.Properties)+2 {
		t.Fatalf("emitted %d states", len(states))
	}
	if !strings.Contains(final.Summary, "Alex") || !strings.Contains(final.Summary, "60") {
		t.Fatalf("summary = %q", final.Summary)
	}
}

func TestRunLogsMostRecentFirst(t *testing.T) {
	final, err := fixedRunner().Run(context.Background(), fallback.Default().Match, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, g := range final.Logs {
		want := models.Properties[len(models.Properties)-1-i]
		if g.Property != want {
			t.Fatalf("log[%d] property = %s, want %s", i, g.Property, want)
		}
		if g.Step != len(models.Properties)-i {
			t.Fatalf("log[%d] step = %d", i, g.Step)
		}
	}
	ex := final.Logs[2]
	if ex.Attacker != "Sam" || ex.Defender != "Alex" || ex.Remaining != 60 {
		t.Fatalf("exercise group = %+v", ex)
	}
}

func TestRunEmitsCopies(t *testing.T) {
	var first State
	_, err := fixedRunner().Run(context.Background(), fallback.Default().Match, func(s State) {
		if !first.IsStarted {
			first = s
		}
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first.CurrentStep != 0 || len(first.Logs) != 0 || first.HealthPoints["Sam"] != MaxHealth {
		t.Fatalf("first emitted state was mutated: %+v", first)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	steps := 0
	pacer := PacerFunc(func(ctx context.Context, d time.Duration) error {
		steps++
		if steps == 2 {
			cancel()
		}
		return ctx.Err()
	})
	r := NewRunner(Config{Damage: DefaultDamage}, pacer, nil, nil)
	var emitted int
	st, err := r.Run(ctx, fallback.Default().Match, func(State) { emitted++ })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if st.CurrentStep != 2 || st.IsFinished {
		t.Fatalf("partial state = step %d finished %v", st.CurrentStep, st.IsFinished)
	}
	if emitted != 3 {
		t.Fatalf("emitted %d states after cancel, want 3", emitted)
	}
}

func TestRunRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := fixedRunner().Run(ctx, fallback.Default().Match, func(State) { called = true })
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("err = %v called = %v", err, called)
	}
}

func TestRunRejectsInvalidMatch(t *testing.T) {
	m := fallback.Default().Match
	m.LoserInfo.Name = m.WinnerInfo.Name
	if _, err := fixedRunner().Run(context.Background(), m, nil); !errors.Is(err, models.ErrInvalidMatch) {
		t.Fatalf("err = %v, want ErrInvalidMatch", err)
	}
}

func TestRunUnknownWinnerFallsToFirstParticipant(t *testing.T) {
	m := fallback.Default().Match
	m.PropertyWinners = map[models.Property]string{models.Height: "Nobody"}
	final, err := fixedRunner().Run(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if final.HealthPoints["Alex"] != MaxHealth || final.HealthPoints["Sam"] != 0 {
		t.Fatalf("health = %v", final.HealthPoints)
	}
}

func TestFixedMessagesUseFirstLine(t *testing.T) {
	cat := DefaultCatalog()
	final, err := fixedRunner().Run(context.Background(), fallback.Default().Match, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	g := final.Logs[len(final.Logs)-1]
	want := cat.AttackMessage(nil, models.Height, "Alex", "Sam")
	if g.Attack != want {
		t.Fatalf("attack = %q, want %q", g.Attack, want)
	}
	if g.Result != "Sam takes 40 damage! 60 HP left." {
		t.Fatalf("result = %q", g.Result)
	}
}

func TestRandomMessagesComeFromCatalog(t *testing.T) {
	cat := DefaultCatalog()
	r := NewRunner(Config{Damage: DefaultDamage, RandomMessages: true}, noPause, cat, NewSeededRNG(7))
	final, err := r.Run(context.Background(), fallback.Default().Match, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, g := range final.Logs {
		var options []string
		for _, line := range cat.Attacks[g.Property] {
			options = append(options, fill(line, map[string]string{"attacker": g.Attacker, "defender": g.Defender, "property": g.Property.Label()}))
		}
		if !slices.Contains(options, g.Attack) {
			t.Fatalf("attack %q not in catalog for %s", g.Attack, g.Property)
		}
	}
}

func TestApplyDamageClamps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := rapid.IntRange(-50, 200).Draw(t, "health")
		d := rapid.IntRange(-200, 200).Draw(t, "damage")
		got := ApplyDamage(h, d)
		if got < 0 || got > MaxHealth {
			t.Fatalf("ApplyDamage(%d, %d) = %d out of range", h, d, got)
		}
	})
}

func TestHealthStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := []string{"Ann", "Bo"}
		winners := map[models.Property]string{}
		for _, p := range models.Properties {
			winners[p] = rapid.SampledFrom(names).Draw(t, string(p))
		}
		m := models.MatchData{
			PropertyWinners: winners,
			WinnerInfo:      models.HealthInfo{Name: "Ann"},
			LoserInfo:       models.HealthInfo{Name: "Bo"},
		}
		damage := rapid.IntRange(1, MaxHealth).Draw(t, "damage")
		r := NewRunner(Config{Damage: damage}, noPause, nil, nil)
		final, err := r.Run(context.Background(), m, func(s State) {
			for n, h := range s.HealthPoints {
				if h < 0 || h > MaxHealth {
					t.Fatalf("%s health %d out of range", n, h)
				}
			}
		})
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(final.Logs) != len(models.Properties) {
			t.Fatalf("log groups = %d", len(final.Logs))
		}
		for _, name := range names {
			losses := 0
			for _, p := range models.Properties {
				if winners[p] != name {
					losses++
				}
			}
			if want := max(0, MaxHealth-damage*losses); final.HealthPoints[name] != want {
				t.Fatalf("%s health = %d, want %d after %d losses of %d", name, final.HealthPoints[name], want, losses, damage)
			}
		}
	})
}

func TestRunTrimsParticipantNames(t *testing.T) {
	m := models.MatchData{
		PropertyWinners: map[models.Property]string{
			models.Height: "Lee ", models.Weight: "Lee", models.ExerciseCount: " Kim",
		},
		WinnerInfo: models.HealthInfo{Name: " Kim"},
		LoserInfo:  models.HealthInfo{Name: "Lee"},
	}
	final, err := fixedRunner().Run(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(final.HealthPoints) != 2 {
		t.Fatalf("health keys = %v", final.HealthPoints)
	}
	// Lee wins height and weight, Kim the rest
	if final.HealthPoints["Kim"] != 20 || final.HealthPoints["Lee"] != 0 {
		t.Fatalf("health = %v", final.HealthPoints)
	}
}

func TestTimerPacerReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := (TimerPacer{}).Pause(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("pause did not return promptly")
	}
	if err := (TimerPacer{}).Pause(context.Background(), 0); err != nil {
		t.Fatalf("zero pause: %v", err)
	}
}

func TestOutcomeDraw(t *testing.T) {
	s := newState("A", "B")
	if _, _, draw := Outcome(s); !draw {
		t.Fatal("equal health should be a draw")
	}
	s.HealthPoints["B"] = 20
	if w, l, draw := Outcome(s); draw || w != "A" || l != "B" {
		t.Fatalf("outcome = %s %s %v", w, l, draw)
	}
}
