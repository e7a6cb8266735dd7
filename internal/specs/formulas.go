package specs

import (
	"math"
	"strings"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
)

const (
	minAcceleration       = 2.2
	accelerationFactor    = 0.85
	electricTopSpeedCap   = 210
	electricCapBelowHP    = 500
	electricPriceModifier = 1.25
)

// PriceTier is the market segment a brand sells in
type PriceTier int

const (
	TierMass PriceTier = iota
	TierPremium
	TierUltra
)

var ultraBrands = []string{
	"ferrari", "lamborghini", "mclaren", "bugatti", "pagani", "koenigsegg",
	"rolls-royce", "rolls royce", "bentley", "aston martin", "rimac",
}

var premiumBrands = []string{
	"bmw", "mercedes", "audi", "porsche", "lexus", "volvo", "jaguar", "land rover",
	"range rover", "tesla", "genesis", "infiniti", "acura", "alfa romeo", "maserati",
	"cadillac", "lincoln", "polestar", "lotus", "lucid", "rivian",
}

// BrandTier looks the brand up in the luxury and premium lists
func BrandTier(brand string) PriceTier {
	b := matching.Normalize(brand)
	for _, u := range ultraBrands {
		if b == u {
			return TierUltra
		}
	}
	for _, p := range premiumBrands {
		if b == p || strings.HasPrefix(b, p+"-") || strings.HasPrefix(b, p+" ") {
			return TierPremium
		}
	}
	return TierMass
}

// TopSpeed in km/h, piecewise in horsepower
func TopSpeed(hp int, fuel model.FuelType) int {
	h := float64(hp)
	var v float64
	switch {
	case hp <= 110:
		v = 160 + 0.25*h
	case hp <= 210:
		v = 175 + 0.18*h
	case hp <= 450:
		v = 210 + 0.12*h
	default:
		v = 260 + 0.06*h
	}

	if fuel == model.FuelElectric && hp < electricCapBelowHP && v > electricTopSpeedCap {
		v = electricTopSpeedCap
	}
	return int(math.Round(v))
}

// Acceleration is the 0-100 km/h time in seconds, never below 2.2
func Acceleration(hp, weight int) float64 {
	if hp <= 0 {
		return 20
	}
	a := float64(weight) / float64(hp) * accelerationFactor
	a = round1(a)
	if a < minAcceleration {
		return minAcceleration
	}
	return a
}

// EstimatePrice derives a list price from brand tier, power and fuel
func EstimatePrice(brand string, hp int, fuel model.FuelType) int {
	return PriceForTier(BrandTier(brand), hp, fuel)
}

// PriceForTier is EstimatePrice with the tier already resolved
func PriceForTier(tier PriceTier, hp int, fuel model.FuelType) int {
	h := float64(hp)
	var v float64
	switch tier {
	case TierUltra:
		v = 120000 + 150*h
	case TierPremium:
		v = 35000 + 90*h
	default:
		v = 16500 + 65*h
	}

	if fuel == model.FuelElectric {
		v *= electricPriceModifier
	}
	return int(math.Round(v/100)) * 100
}

// MPGToConsumption converts combined miles per gallon to L/100km
func MPGToConsumption(mpg float64) float64 {
	if mpg <= 0 {
		return defaultConsumption
	}
	return round1(235.21 / mpg)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
