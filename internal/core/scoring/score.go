// Package scoring assigns the dominant archetype from raw survey answers.
package scoring

import (
	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// Result is the per-archetype tally used to pick a winner.
type Result struct {
	Archetype domain.Archetype
	Sum       int
	Fives     int
}

// Breakdown tallies every archetype group in canonical order.
func Breakdown(answers domain.Answers) ([]Result, error) {
	if err := answers.Validate(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(domain.Archetypes))
	for _, a := range domain.Archetypes {
		res := Result{Archetype: a}
		for _, idx := range domain.GroupOf(a).Indexes() {
			res.Sum += answers[idx]
			if answers[idx] == domain.MaxAnswer {
				res.Fives++
			}
		}
		out = append(out, res)
	}
	return out, nil
}

// Score returns the archetype with the highest group sum. Equal sums go to
// the group with more top-rated answers, then to canonical order.
func Score(answers domain.Answers) (domain.Archetype, error) {
	results, err := Breakdown(answers)
	if err != nil {
		return "", err
	}

	best := results[0]
	for _, res := range results[1:] {
		if res.Sum > best.Sum || (res.Sum == best.Sum && res.Fives > best.Fives) {
			best = res
		}
	}
	return best.Archetype, nil
}
