package battle

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pefman/health-duel/internal/models"
)

// Catalog holds the canned battle lines. Placeholders: {attacker}, {defender},
// {damage}, {remaining}, {property}, {winner}, {loser}, {hp}.
type Catalog struct {
	Attacks map[models.Property][]string `yaml:"attacks"`
	Results []string                     `yaml:"results"`
	Summary string                       `yaml:"summary"`
	Draw    string                       `yaml:"draw"`
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Attacks: map[models.Property][]string{
			models.Height: {
				"{attacker} looks down on {defender} from a towering height!",
				"{attacker} stretches to full height and casts a shadow over {defender}!",
				"{attacker} lands a height advantage strike on {defender}!",
			},
			models.Weight: {
				"{attacker} shows off a balanced weight and slams into {defender}!",
				"{attacker} moves lightly and outmaneuvers {defender}!",
				"{attacker} throws a perfectly proportioned body check at {defender}!",
			},
			models.ExerciseCount: {
				"{attacker} unleashes the power of weekly workouts on {defender}!",
				"{attacker} flexes gym-built muscles and charges {defender}!",
				"{attacker} sprints circles around {defender}!",
			},
			models.SmokeCount: {
				"{attacker} takes a deep, clean breath while {defender} coughs!",
				"{attacker} fires clear lungs straight at {defender}!",
				"{defender} reaches for a cigarette and {attacker} strikes!",
			},
			models.DrinkingCount: {
				"{attacker} strikes {defender} with a clear, sober head!",
				"{attacker} shrugs off last night and hits {defender}!",
				"{defender} is still hungover as {attacker} attacks!",
			},
		},
		Results: []string{
			"{defender} takes {damage} damage! {remaining} HP left.",
			"Critical hit! {defender} loses {damage} HP and is down to {remaining}.",
			"{defender} staggers: -{damage} HP, {remaining} remaining.",
		},
		Summary: "The duel is over. {winner} survives with {hp} HP and {loser} is carried out!",
		Draw:    "The duel is over. Nobody walks away a winner.",
	}
}

// LoadCatalog reads a YAML catalog. Sections missing from the file keep the
// built-in lines.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var in Catalog
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	out := DefaultCatalog()
	for p, lines := range in.Attacks {
		if !p.Valid() {
			return nil, fmt.Errorf("catalog: unknown property %q", p)
		}
		if len(lines) > 0 {
			out.Attacks[p] = lines
		}
	}
	if len(in.Results) > 0 {
		out.Results = in.Results
	}
	if strings.TrimSpace(in.Summary) != "" {
		out.Summary = in.Summary
	}
	if strings.TrimSpace(in.Draw) != "" {
		out.Draw = in.Draw
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Catalog) validate() error {
	for _, p := range models.Properties {
		if len(c.Attacks[p]) == 0 {
			return fmt.Errorf("catalog: no attack lines for %s", p)
		}
	}
	if len(c.Results) == 0 {
		return errors.New("catalog: no result lines")
	}
	return nil
}

// AttackMessage picks an attack line for p. With a nil rnd the first line is used.
func (c *Catalog) AttackMessage(rnd *rand.Rand, p models.Property, attacker, defender string) string {
	line := pick(rnd, c.Attacks[p])
	if line == "" {
		line = "{attacker} attacks {defender}!"
	}
	return fill(line, map[string]string{
		"attacker": attacker,
		"defender": defender,
		"property": p.Label(),
	})
}

// ResultMessage picks a damage line.
func (c *Catalog) ResultMessage(rnd *rand.Rand, defender string, damage, remaining int) string {
	return fill(pick(rnd, c.Results), map[string]string{
		"defender":  defender,
		"damage":    strconv.Itoa(damage),
		"remaining": strconv.Itoa(remaining),
	})
}

func (c *Catalog) SummaryMessage(s State) string {
	winner, loser, draw := Outcome(s)
	if draw {
		return c.Draw
	}
	return fill(c.Summary, map[string]string{
		"winner": winner,
		"loser":  loser,
		"hp":     strconv.Itoa(s.HealthPoints[winner]),
	})
}

func fill(line string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(line)
}
