package specs

import (
	"math"
	"strings"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
)

const (
	defaultConsumption = 6.5
	baseWeight         = 1100
	weightPerHP        = 1.5
)

// Normalizer turns third-party records into canonical specs.
// EstimatePrice enables the brand-tier pricing step for records without a price.
type Normalizer struct {
	EstimatePrice bool
}

// Normalize converts raw into a VehicleSpec. It returns false for records
// without a brand or model, which callers drop. A record without horsepower
// is synthesized in full from its name so its sub-scores stay consistent;
// only the record's year is kept.
func (n Normalizer) Normalize(raw model.RawVehicle, index int) (model.VehicleSpec, bool) {
	brand := strings.TrimSpace(raw.Make)
	modelName := strings.TrimSpace(raw.Model)
	if brand == "" || modelName == "" {
		return model.VehicleSpec{}, false
	}

	if raw.Horsepower <= 0 {
		s := Synthesize(brand, modelName, index)
		if raw.Year > 0 {
			s.Year = raw.Year
		}
		return s, true
	}

	s := model.VehicleSpec{
		ID:           matching.Slug(brand, modelName),
		Brand:        matching.Canonical(brand),
		Model:        matching.Canonical(modelName),
		Year:         raw.Year,
		HP:           raw.Horsepower,
		Consumption:  MPGToConsumption(raw.CombinationMPG),
		Weight:       raw.Weight,
		Price:        raw.Price,
		Traction:     DriveCode(raw.Drive),
		FuelType:     FuelCode(raw.FuelType),
		Transmission: TransmissionCode(raw.Transmission),
	}
	if s.Weight <= 0 {
		s.Weight = int(math.Round(baseWeight + float64(s.HP)*weightPerHP))
	}
	if s.Price <= 0 && n.EstimatePrice {
		s.Price = EstimatePrice(brand, s.HP, s.FuelType)
	}

	derive(&s)
	return s, true
}

// Complete canonicalizes a known-good spec (seed data) and recomputes every
// derived attribute with the shared formulas.
func Complete(s model.VehicleSpec) model.VehicleSpec {
	s.Brand = matching.Canonical(s.Brand)
	s.Model = matching.Canonical(s.Model)
	if s.ID == "" {
		s.ID = matching.Slug(s.Brand, s.Model)
	}
	if s.Traction == "" || s.Traction == model.DrivetrainAny {
		s.Traction = model.DrivetrainFWD
	}
	if s.FuelType == "" {
		s.FuelType = model.FuelGasoline
	}
	if s.Transmission == "" {
		s.Transmission = model.TransmissionManual
	}
	if s.Weight <= 0 {
		s.Weight = int(math.Round(baseWeight + float64(s.HP)*weightPerHP))
	}
	if s.Consumption < 0 {
		s.Consumption = 0
	}
	s.Score = nil
	derive(&s)
	return s
}

// DriveCode maps descriptive drive codes: anything mentioning "all" or "4"
// is AWD, everything else FWD. RWD is never inferred here.
func DriveCode(code string) model.Drivetrain {
	c := strings.ToLower(code)
	if strings.Contains(c, "all") || strings.Contains(c, "4") {
		return model.DrivetrainAWD
	}
	return model.DrivetrainFWD
}

// FuelCode maps "electricity" to electric; every other code is gasoline
func FuelCode(code string) model.FuelType {
	if strings.EqualFold(strings.TrimSpace(code), "electricity") {
		return model.FuelElectric
	}
	return model.FuelGasoline
}

func TransmissionCode(code string) model.Transmission {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(code)), "m") {
		return model.TransmissionManual
	}
	return model.TransmissionAutomatic
}
