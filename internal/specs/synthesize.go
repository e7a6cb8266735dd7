package specs

import (
	"hash/fnv"
	"math"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
)

const (
	awdHPThreshold     = 280
	awdWeightThreshold = 1800
	latestModelYear    = 2024
)

// profile is the base range of one class; values are base + seed*spread
type profile struct {
	hp, hpSpread         float64
	cons, consSpread     float64
	weight, weightSpread float64
	tier                 PriceTier
}

var profiles = map[Class]profile{
	ClassUltra:       {hp: 480, hpSpread: 300, cons: 12, consSpread: 4, weight: 1450, weightSpread: 250, tier: TierUltra},
	ClassPerformance: {hp: 240, hpSpread: 180, cons: 8.5, consSpread: 3, weight: 1400, weightSpread: 300, tier: TierPremium},
	ClassLarge:       {hp: 190, hpSpread: 150, cons: 8, consSpread: 3.5, weight: 1900, weightSpread: 450, tier: TierMass},
	ClassCity:        {hp: 70, hpSpread: 40, cons: 4.6, consSpread: 1.4, weight: 950, weightSpread: 250, tier: TierMass},
	ClassDefault:     {hp: 110, hpSpread: 90, cons: 5.4, consSpread: 2.2, weight: 1200, weightSpread: 300, tier: TierMass},
}

// Seed maps brand and model to a stable value in [0, 1) using 32-bit FNV-1a
// over "brand-model" (folded), reduced modulo 1000.
func Seed(brand, model string) float64 {
	h := fnv.New32a()
	h.Write([]byte(matching.Normalize(brand) + "-" + matching.Normalize(model)))
	return float64(h.Sum32()%1000) / 1000
}

// Synthesize infers a plausible specification from a name alone. The same
// brand and model always produce the same base values; index only adds
// (index % 10) * 5 hp so siblings in one result list differ slightly.
func Synthesize(brand, modelName string, index int) model.VehicleSpec {
	seed := Seed(brand, modelName)
	class := Classify(brand, modelName)
	p := profiles[class]
	fuel := inferFuel(brand, modelName)

	hp := int(math.Round(p.hp+seed*p.hpSpread)) + (index%10)*5
	weight := p.weight + seed*p.weightSpread
	consumption := p.cons + seed*p.consSpread

	switch fuel {
	case model.FuelElectric:
		consumption = 14 + seed*8
		if class == ClassLarge || class == ClassUltra {
			consumption += 6
		}
		weight += 300
	case model.FuelHybrid:
		consumption *= 0.7
	}

	s := model.VehicleSpec{
		ID:          matching.Slug(brand, modelName),
		Brand:       matching.Canonical(brand),
		Model:       matching.Canonical(modelName),
		Year:        latestModelYear - int(seed*5),
		HP:          hp,
		Consumption: round1(consumption),
		Weight:      int(math.Round(weight)),
		FuelType:    fuel,
	}
	s.Traction = synthDrivetrain(class, s.HP, s.Weight)
	s.Transmission = synthTransmission(class, s.HP, fuel)

	tier := BrandTier(brand)
	if p.tier > tier {
		tier = p.tier
	}
	s.Price = PriceForTier(tier, s.HP, fuel)

	derive(&s)
	return s
}

func synthDrivetrain(class Class, hp, weight int) model.Drivetrain {
	switch {
	case hp > awdHPThreshold || weight > awdWeightThreshold:
		return model.DrivetrainAWD
	case class == ClassPerformance || class == ClassUltra:
		return model.DrivetrainRWD
	default:
		return model.DrivetrainFWD
	}
}

func synthTransmission(class Class, hp int, fuel model.FuelType) model.Transmission {
	if hp > 200 || fuel == model.FuelElectric || class == ClassLarge || class == ClassUltra {
		return model.TransmissionAutomatic
	}
	return model.TransmissionManual
}

func inferFuel(brand, modelName string) model.FuelType {
	name := brand + " " + modelName
	switch {
	case matchesAny(name, electricKeywords):
		return model.FuelElectric
	case matchesAny(name, hybridKeywords):
		return model.FuelHybrid
	default:
		return model.FuelGasoline
	}
}
