// Package seed holds the local dataset of known-good specifications and the
// model-name catalog used when no numeric data exists.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
	"carcompare-api/internal/specs"
)

//go:embed catalog.yaml
var embedded []byte

type vehicleEntry struct {
	Brand        string  `yaml:"brand"`
	Model        string  `yaml:"model"`
	Year         int     `yaml:"year"`
	HP           int     `yaml:"hp"`
	Consumption  float64 `yaml:"consumption"`
	Weight       int     `yaml:"weight"`
	Price        int     `yaml:"price"`
	Traction     string  `yaml:"traction"`
	Fuel         string  `yaml:"fuel"`
	Transmission string  `yaml:"transmission"`
}

type catalogFile struct {
	Vehicles []vehicleEntry     `yaml:"vehicles"`
	Models   map[string][]string `yaml:"models"`
}

// Name is a brand and model pair without numeric data
type Name struct {
	Brand string
	Model string
}

// Catalog is the parsed seed dataset
type Catalog struct {
	vehicles []model.VehicleSpec
	models   map[string][]string
}

// Load parses the embedded catalog
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// LoadFile parses a catalog file, falling back to the embedded one when path is empty
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML. Entries without brand, model or horsepower are skipped.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	c := &Catalog{models: make(map[string][]string, len(f.Models))}
	for _, e := range f.Vehicles {
		if strings.TrimSpace(e.Brand) == "" || strings.TrimSpace(e.Model) == "" || e.HP <= 0 {
			continue
		}
		s := specs.Complete(model.VehicleSpec{
			Brand:        e.Brand,
			Model:        e.Model,
			Year:         e.Year,
			HP:           e.HP,
			Consumption:  e.Consumption,
			Weight:       e.Weight,
			Price:        e.Price,
			Traction:     model.ParseDrivetrain(e.Traction),
			FuelType:     model.FuelType(strings.ToLower(e.Fuel)),
			Transmission: model.Transmission(strings.ToLower(e.Transmission)),
		})
		s.Source = model.SourceSeed
		c.vehicles = append(c.vehicles, s)
	}
	for brand, names := range f.Models {
		c.models[brand] = append([]string(nil), names...)
	}
	return c, nil
}

// NewCatalog builds a catalog from specs already in memory
func NewCatalog(vehicles []model.VehicleSpec, models map[string][]string) *Catalog {
	c := &Catalog{models: models}
	if c.models == nil {
		c.models = map[string][]string{}
	}
	for _, v := range vehicles {
		s := specs.Complete(v)
		s.Source = model.SourceSeed
		c.vehicles = append(c.vehicles, s)
	}
	return c
}

// Search returns the seed vehicles whose brand and model contain every word of term
func (c *Catalog) Search(term string) []model.VehicleSpec {
	words := strings.Fields(matching.Normalize(term))
	if len(words) == 0 {
		return nil
	}

	var out []model.VehicleSpec
	for _, v := range c.vehicles {
		if containsAll(v.Brand+" "+v.Model, words) {
			out = append(out, v)
		}
	}
	return out
}

// Names returns catalog model names matching term. A term naming a brand
// yields all of that brand's models.
func (c *Catalog) Names(term string) []Name {
	words := strings.Fields(matching.Normalize(term))
	if len(words) == 0 {
		return nil
	}

	var out []Name
	for _, brand := range c.Brands() {
		for _, m := range c.models[brand] {
			if containsAll(brand+" "+m, words) {
				out = append(out, Name{Brand: brand, Model: m})
			}
		}
	}
	return out
}

// Brands lists every brand of the catalog, sorted
func (c *Catalog) Brands() []string {
	seen := make(map[string]bool)
	var brands []string
	add := func(b string) {
		k := matching.Normalize(b)
		if seen[k] {
			return
		}
		seen[k] = true
		brands = append(brands, b)
	}
	for b := range c.models {
		add(b)
	}
	for _, v := range c.vehicles {
		add(v.Brand)
	}
	sort.Slice(brands, func(i, j int) bool {
		return matching.Normalize(brands[i]) < matching.Normalize(brands[j])
	})
	return brands
}

// Terms lists every model name of the catalog, the work list of the cache warmer
func (c *Catalog) Terms() []string {
	seen := make(map[string]bool)
	var terms []string
	for _, brand := range c.Brands() {
		for _, m := range c.models[brand] {
			k := matching.Normalize(m)
			if seen[k] {
				continue
			}
			seen[k] = true
			terms = append(terms, m)
		}
	}
	return terms
}

// Vehicles returns every seed spec
func (c *Catalog) Vehicles() []model.VehicleSpec {
	return append([]model.VehicleSpec(nil), c.vehicles...)
}

func containsAll(name string, words []string) bool {
	n := matching.Normalize(name)
	for _, w := range words {
		if !strings.Contains(n, w) {
			return false
		}
	}
	return true
}
