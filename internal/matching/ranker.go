package matching

import (
	"errors"

	"carcompare-api/internal/model"
)

// ErrEmptySelection is returned when ranking is asked for without specs
var ErrEmptySelection = errors.New("at least one spec is required to rank")

// Radar metrics, in row order
const (
	MetricEco    = "eco"
	MetricSport  = "sport"
	MetricFamily = "family"
)

// Rank picks the eco, sport, family and overall winners of a selection.
// Ties go to the spec that appears first.
func Rank(specs []model.VehicleSpec) (model.Ranking, error) {
	if len(specs) == 0 {
		return model.Ranking{}, ErrEmptySelection
	}

	return model.Ranking{
		Overall: argmax(specs, func(s model.VehicleSpec) int { return s.EcoScore + s.SportScore + s.FamilyScore }),
		Eco:     argmax(specs, func(s model.VehicleSpec) int { return s.EcoScore }),
		Sport:   argmax(specs, func(s model.VehicleSpec) int { return s.SportScore }),
		Family:  argmax(specs, func(s model.VehicleSpec) int { return s.FamilyScore }),
	}, nil
}

func argmax(specs []model.VehicleSpec, value func(model.VehicleSpec) int) model.VehicleSpec {
	best := 0
	for i := 1; i < len(specs); i++ {
		if value(specs[i]) > value(specs[best]) {
			best = i
		}
	}
	return specs[best]
}

// BuildRadarData reshapes a selection into three rows (eco, sport, family)
// with one column per spec id
func BuildRadarData(specs []model.VehicleSpec) []model.RadarRow {
	metrics := []struct {
		name  string
		value func(model.VehicleSpec) int
	}{
		{MetricEco, func(s model.VehicleSpec) int { return s.EcoScore }},
		{MetricSport, func(s model.VehicleSpec) int { return s.SportScore }},
		{MetricFamily, func(s model.VehicleSpec) int { return s.FamilyScore }},
	}

	order := make([]string, len(specs))
	for i, s := range specs {
		order[i] = s.ID
	}

	rows := make([]model.RadarRow, 0, len(metrics))
	for _, m := range metrics {
		row := model.RadarRow{
			Metric: m.name,
			Values: make(map[string]int, len(specs)),
			Order:  order,
		}
		for _, s := range specs {
			row.Values[s.ID] = m.value(s)
		}
		rows = append(rows, row)
	}
	return rows
}
