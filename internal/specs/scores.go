package specs

import (
	"math"

	"carcompare-api/internal/model"
)

// EcoScore favors low power, consumption and weight. Electric cars start from
// a higher baseline since their consumption is measured in kWh.
func EcoScore(hp int, consumption float64, weight int, fuel model.FuelType) int {
	var v float64
	switch fuel {
	case model.FuelElectric:
		v = 92 - float64(hp)*0.03 - float64(weight-1500)*0.01
	default:
		v = 100 - consumption*6 - float64(hp)*0.05 - float64(weight-1000)*0.01
		if fuel == model.FuelHybrid {
			v += 10
		}
	}
	return clampScore(v)
}

// SportScore favors power, quick acceleration and rear or all wheel drive
func SportScore(hp int, acceleration float64, traction model.Drivetrain) int {
	v := float64(hp)*0.12 + (12-acceleration)*5
	if traction != model.DrivetrainFWD {
		v += 10
	}
	return clampScore(v)
}

// FamilyScore favors heavier, cheaper vehicles. Unknown price is neutral.
func FamilyScore(weight, price int) int {
	v := 40 + float64(weight-1100)*0.06
	if price > 0 {
		v -= float64(price-25000) / 2000
	}
	return clampScore(v)
}

// Clamp limits a score to [0, 100]
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func clampScore(v float64) int {
	return int(math.Round(Clamp(v)))
}

// derive fills every attribute computed from hp, weight, fuel and price so
// that seed, live and synthesized specs stay comparable
func derive(s *model.VehicleSpec) {
	s.Acceleration = Acceleration(s.HP, s.Weight)
	s.TopSpeed = TopSpeed(s.HP, s.FuelType)
	s.EcoScore = EcoScore(s.HP, s.Consumption, s.Weight, s.FuelType)
	s.SportScore = SportScore(s.HP, s.Acceleration, s.Traction)
	s.FamilyScore = FamilyScore(s.Weight, s.Price)
}
