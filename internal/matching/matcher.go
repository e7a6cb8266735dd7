package matching

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"carcompare-api/internal/model"
)

// Policy is the single table of weights used by the preference matcher
type Policy struct {
	Start                    float64 `yaml:"start"`
	PowerShortfallPerHP      float64 `yaml:"power_shortfall_per_hp"`
	ConsumptionExcessPerUnit float64 `yaml:"consumption_excess_per_unit"`
	PriceExcessPerThousand   float64 `yaml:"price_excess_per_thousand"`
	DrivetrainMatchBonus     float64 `yaml:"drivetrain_match_bonus"`
}

// DefaultPolicy is the reference scoring policy
var DefaultPolicy = Policy{
	Start:                    100,
	PowerShortfallPerHP:      0.5,
	ConsumptionExcessPerUnit: 10,
	PriceExcessPerThousand:   2,
	DrivetrainMatchBonus:     15,
}

// LoadPolicy reads a YAML policy file. Keys missing from the file keep their
// DefaultPolicy value.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read scoring policy: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse scoring policy: %w", err)
	}
	return p, nil
}

// Score computes the 0-100 match between a spec and the preferences.
// Steps are additive and only the final value is clamped and rounded.
func (p Policy) Score(spec model.VehicleSpec, prefs model.Preferences) int {
	score := p.Start

	if spec.HP < prefs.MinPower {
		score -= float64(prefs.MinPower-spec.HP) * p.PowerShortfallPerHP
	}
	if spec.Consumption > prefs.MaxConsumption {
		score -= (spec.Consumption - prefs.MaxConsumption) * p.ConsumptionExcessPerUnit
	}
	if spec.Price > 0 && spec.Price > prefs.MaxPrice {
		score -= float64(spec.Price-prefs.MaxPrice) / 1000 * p.PriceExcessPerThousand
	}
	if prefs.PreferredTraction != model.DrivetrainAny && prefs.PreferredTraction != "" &&
		prefs.PreferredTraction == spec.Traction {
		score += p.DrivetrainMatchBonus
	}

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// Recompute returns a copy of specs with fresh scores, best first. Equal
// scores keep their input order.
func (p Policy) Recompute(specs []model.VehicleSpec, prefs model.Preferences) []model.VehicleSpec {
	out := make([]model.VehicleSpec, len(specs))
	for i, s := range specs {
		score := p.Score(s, prefs)
		s.Score = &score
		out[i] = s
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Score > *out[j].Score
	})
	return out
}
