package model

import (
	"strings"
	"time"
)

// Drivetrain is the traction layout of a vehicle
type Drivetrain string

const (
	DrivetrainFWD Drivetrain = "FWD"
	DrivetrainRWD Drivetrain = "RWD"
	DrivetrainAWD Drivetrain = "AWD"
	// DrivetrainAny is only valid as a preference
	DrivetrainAny Drivetrain = "any"
)

// ParseDrivetrain accepts FWD/RWD/AWD in any case, everything else is FWD
func ParseDrivetrain(s string) Drivetrain {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AWD", "4WD":
		return DrivetrainAWD
	case "RWD":
		return DrivetrainRWD
	case "ANY":
		return DrivetrainAny
	default:
		return DrivetrainFWD
	}
}

type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// Source names used for VehicleSpec.Source and merge priority
const (
	SourceSeed      = "seed"
	SourceLive      = "live"
	SourceHeuristic = "heuristic"
)

// VehicleSpec is the canonical per-vehicle record
type VehicleSpec struct {
	ID            string       `json:"id"`
	Brand         string       `json:"brand"`
	Model         string       `json:"model"`
	Year          int          `json:"year"`
	HP            int          `json:"hp"`
	Consumption   float64      `json:"consumption"`
	Weight        int          `json:"weight"`
	Price         int          `json:"price"`
	Traction      Drivetrain   `json:"traction"`
	Acceleration  float64      `json:"acceleration"`
	TopSpeed      int          `json:"topSpeed"`
	Image         string       `json:"image,omitempty"`
	FuelType      FuelType     `json:"fuelType"`
	Transmission  Transmission `json:"transmission"`
	Score         *int         `json:"score,omitempty"`
	EcoScore      int          `json:"ecoScore"`
	SportScore    int          `json:"sportScore"`
	FamilyScore   int          `json:"familyScore"`
	SelectedColor string       `json:"selectedColor,omitempty"`
	Source        string       `json:"source,omitempty"`
}

// MatchScore returns the preference score or 0 when it was never computed
func (v VehicleSpec) MatchScore() int {
	if v.Score == nil {
		return 0
	}
	return *v.Score
}

// Preferences holds the user's thresholds for one session
type Preferences struct {
	MinPower          int        `json:"minPower"`
	MaxConsumption    float64    `json:"maxConsumption"`
	MaxWeight         int        `json:"maxWeight"`
	MaxPrice          int        `json:"maxPrice"`
	PreferredTraction Drivetrain `json:"preferredTraction"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		MinPower:          150,
		MaxConsumption:    8,
		MaxWeight:         1600,
		MaxPrice:          40000,
		PreferredTraction: DrivetrainAny,
	}
}

// Range describes one preference slider
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// PreferenceBounds are informational only, preferences are never validated against them
type PreferenceBounds struct {
	MinPower       Range `json:"minPower"`
	MaxConsumption Range `json:"maxConsumption"`
	MaxPrice       Range `json:"maxPrice"`
}

func DefaultPreferenceBounds() PreferenceBounds {
	return PreferenceBounds{
		MinPower:       Range{Min: 50, Max: 600, Step: 10},
		MaxConsumption: Range{Min: 3, Max: 20, Step: 0.5},
		MaxPrice:       Range{Min: 10000, Max: 200000, Step: 5000},
	}
}

// RawVehicle is a third-party record before normalization.
// Zero numeric fields mean the source did not supply them.
type RawVehicle struct {
	Make           string  `json:"make"`
	Model          string  `json:"model"`
	Year           int     `json:"year"`
	Horsepower     int     `json:"horsepower,omitempty"`
	CombinationMPG float64 `json:"combination_mpg,omitempty"`
	Weight         int     `json:"weight,omitempty"`
	Price          int     `json:"price,omitempty"`
	Drive          string  `json:"drive,omitempty"`
	FuelType       string  `json:"fuel_type,omitempty"`
	Transmission   string  `json:"transmission,omitempty"`
	Class          string  `json:"class,omitempty"`
	Displacement   float64 `json:"displacement,omitempty"`
}

// FavoriteRecord is a favorited spec. The chosen display color lives in
// VehicleSpec.SelectedColor.
type FavoriteRecord struct {
	VehicleSpec
	AddedAt time.Time `json:"addedAt"`
}

// Ranking holds the winners of a comparison set
type Ranking struct {
	Overall VehicleSpec `json:"overall"`
	Eco     VehicleSpec `json:"eco"`
	Sport   VehicleSpec `json:"sport"`
	Family  VehicleSpec `json:"family"`
}
