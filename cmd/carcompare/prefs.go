package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carcompare-api/internal/model"
)

// prefFlags binds the preference thresholds to command flags
type prefFlags struct {
	minPower       int
	maxConsumption float64
	maxPrice       int
	traction       string
}

func (f *prefFlags) bind(cmd *cobra.Command) {
	d := model.DefaultPreferences()
	cmd.Flags().IntVar(&f.minPower, "min-power", d.MinPower, "minimum horsepower")
	cmd.Flags().Float64Var(&f.maxConsumption, "max-consumption", d.MaxConsumption, "maximum consumption in L/100km")
	cmd.Flags().IntVar(&f.maxPrice, "max-price", d.MaxPrice, "maximum price")
	cmd.Flags().StringVar(&f.traction, "traction", string(d.PreferredTraction), "preferred traction (any, FWD, RWD, AWD)")
}

func (f *prefFlags) preferences() (model.Preferences, error) {
	traction, err := parseTraction(f.traction)
	if err != nil {
		return model.Preferences{}, err
	}
	p := model.DefaultPreferences()
	p.MinPower = f.minPower
	p.MaxConsumption = f.maxConsumption
	p.MaxPrice = f.maxPrice
	p.PreferredTraction = traction
	return p, nil
}

// parseTraction rejects values ParseDrivetrain would silently map to FWD
func parseTraction(s string) (model.Drivetrain, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ANY":
		return model.DrivetrainAny, nil
	case "FWD", "RWD", "AWD", "4WD":
		return model.ParseDrivetrain(s), nil
	}
	return "", fmt.Errorf("unknown traction %q", s)
}

// setPreference applies one "key value" pair typed in the shell
func setPreference(p model.Preferences, key, value string) (model.Preferences, error) {
	switch strings.ToLower(strings.ReplaceAll(key, "-", "")) {
	case "minpower", "power":
		n, err := strconv.Atoi(value)
		if err != nil {
			return p, fmt.Errorf("invalid power %q", value)
		}
		p.MinPower = n
	case "maxconsumption", "consumption":
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return p, fmt.Errorf("invalid consumption %q", value)
		}
		p.MaxConsumption = n
	case "maxprice", "price":
		n, err := strconv.Atoi(value)
		if err != nil {
			return p, fmt.Errorf("invalid price %q", value)
		}
		p.MaxPrice = n
	case "traction":
		t, err := parseTraction(value)
		if err != nil {
			return p, err
		}
		p.PreferredTraction = t
	default:
		return p, fmt.Errorf("unknown preference %q", key)
	}
	return p, nil
}
