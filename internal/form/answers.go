// Package form collects the health questionnaire and hands it to the backend.
package form

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pefman/health-duel/internal/models"
)

// Field describes one question on the form.
type Field struct {
	Name    string
	Label   string
	Unit    string
	Min     float64
	Max     float64
	Text    bool // free text instead of a number
	Integer bool // whole numbers only
	Decoy   bool // shown to the user but never sent to the backend
}

// Fields lists every question in display order. The decoy questions make the form
// look like a medical survey; their answers are dropped before submission.
var Fields = []Field{
	{Name: "height", Label: "Height", Unit: "cm", Min: 0, Max: 300},
	{Name: "weight", Label: "Weight", Unit: "kg", Min: 0, Max: 300},
	{Name: "exerciseCount", Label: "Workouts per week", Unit: "times", Min: 0, Max: 7, Integer: true},
	{Name: "smokeCount", Label: "Cigarettes per day", Unit: "sticks", Min: 0, Max: 50, Integer: true},
	{Name: "drinkingCount", Label: "Drinks per week", Unit: "times", Min: 0, Max: 7, Integer: true},
	{Name: "bloodType", Label: "Blood type", Text: true, Decoy: true},
	{Name: "sleepHours", Label: "Sleep per night", Unit: "h", Min: 0, Max: 24, Decoy: true},
	{Name: "name", Label: "Name", Text: true, Max: 20},
}

var (
	ErrIncomplete = errors.New("form is incomplete")
	ErrInvalid    = errors.New("invalid answer")
)

// Answers maps a field name to the raw answer.
type Answers map[string]string

// ParseAnswers keeps only known fields from a submitted form.
func ParseAnswers(v url.Values) Answers {
	a := make(Answers, len(Fields))
	for _, f := range Fields {
		a[f.Name] = strings.TrimSpace(v.Get(f.Name))
	}
	return a
}

// Progress is the share of filled fields, 0 to 100.
func (a Answers) Progress() float64 {
	filled := 0
	for _, f := range Fields {
		if strings.TrimSpace(a[f.Name]) != "" {
			filled++
		}
	}
	return float64(filled) / float64(len(Fields)) * 100
}

// Ready gates submission: every field must be filled.
func (a Answers) Ready() bool { return a.Progress() == 100 }

// Validate checks ranges of the filled answers.
func (a Answers) Validate() error {
	for _, f := range Fields {
		v := strings.TrimSpace(a[f.Name])
		if v == "" {
			continue
		}
		if f.Text {
			if f.Max > 0 && utf8.RuneCountInString(v) > int(f.Max) {
				return fmt.Errorf("%w: %s is longer than %d characters", ErrInvalid, f.Label, int(f.Max))
			}
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", ErrInvalid, f.Label)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%w: %s must be a number", ErrInvalid, f.Label)
		}
		if f.Integer && n != math.Trunc(n) {
			return fmt.Errorf("%w: %s must be a whole number", ErrInvalid, f.Label)
		}
		if n < f.Min || n > f.Max {
			return fmt.Errorf("%w: %s must be between %g and %g", ErrInvalid, f.Label, f.Min, f.Max)
		}
	}
	return nil
}

// Payload converts the answers into the submission body. Decoys are left out.
func (a Answers) Payload() (models.ProfileInput, error) {
	if !a.Ready() {
		return models.ProfileInput{}, ErrIncomplete
	}
	if err := a.Validate(); err != nil {
		return models.ProfileInput{}, err
	}
	num := func(k string) float64 {
		n, _ := strconv.ParseFloat(a[k], 64)
		return n
	}
	return models.ProfileInput{
		Name:          strings.TrimSpace(a["name"]),
		Height:        num("height"),
		Weight:        num("weight"),
		ExerciseCount: int(num("exerciseCount")),
		SmokeCount:    int(num("smokeCount")),
		DrinkingCount: int(num("drinkingCount")),
	}, nil
}
