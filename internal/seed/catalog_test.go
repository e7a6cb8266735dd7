package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	all := c.Vehicles()
	require.NotEmpty(t, all)

	seen := make(map[string]bool)
	for _, v := range all {
		assert.Equal(t, model.SourceSeed, v.Source)
		assert.False(t, seen[v.ID], "duplicate id %s", v.ID)
		seen[v.ID] = true

		assert.GreaterOrEqual(t, v.Acceleration, 2.2, v.ID)
		assert.Greater(t, v.TopSpeed, 0, v.ID)
		for _, s := range []int{v.EcoScore, v.SportScore, v.FamilyScore} {
			assert.GreaterOrEqual(t, s, 0, v.ID)
			assert.LessOrEqual(t, s, 100, v.ID)
		}
	}
}

func TestSearch(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	bmw := c.Search("bmw")
	require.NotEmpty(t, bmw)
	for _, v := range bmw {
		assert.Equal(t, "BMW", v.Brand)
	}

	m3 := c.Search("BMW  m3")
	require.Len(t, m3, 1)
	assert.Equal(t, "bmw-m3-competition", m3[0].ID)
	assert.Equal(t, model.DrivetrainRWD, m3[0].Traction)

	assert.Empty(t, c.Search("   "))
	assert.Empty(t, c.Search("trabant"))
}

func TestNames(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	tesla := c.Names("tesla")
	assert.Len(t, tesla, 4)

	golf := c.Names("golf")
	assert.Contains(t, golf, Name{Brand: "Volkswagen", Model: "Golf"})
	assert.Contains(t, golf, Name{Brand: "Volkswagen", Model: "Golf GTI"})
}

func TestBrandsAndTerms(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	brands := c.Brands()
	assert.Contains(t, brands, "BMW")
	assert.Contains(t, brands, "Mercedes-Benz")
	assert.IsNonDecreasing(t, lowered(brands))

	terms := c.Terms()
	assert.Contains(t, terms, "Model 3")
	assert.Len(t, terms, len(unique(terms)))
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
vehicles:
  - {brand: Lada, model: Niva, hp: 83, consumption: 10.3, traction: awd, fuel: gasoline, transmission: manual}
  - {brand: "", model: Ghost, hp: 100}
  - {brand: Lada, model: Granta}
models:
  Lada: [Niva, Granta]
`))
	require.NoError(t, err)

	v := c.Vehicles()
	require.Len(t, v, 1)
	assert.Equal(t, "LADA", v[0].Brand)
	assert.Equal(t, model.DrivetrainAWD, v[0].Traction)
	assert.Equal(t, 1225, v[0].Weight)
	assert.Len(t, c.Names("lada"), 2)

	_, err = Parse([]byte("vehicles: [unterminated"))
	assert.Error(t, err)
}

func TestNewCatalog(t *testing.T) {
	c := NewCatalog([]model.VehicleSpec{{Brand: "bmw", Model: "118i", HP: 130, Consumption: 5.2, Weight: 1295}}, nil)

	got := c.Search("118")
	require.Len(t, got, 1)
	assert.Equal(t, "bmw-118i", got[0].ID)
	assert.Equal(t, model.SourceSeed, got[0].Source)
	assert.Empty(t, c.Names("bmw"))
}

func lowered(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = matching.Normalize(s)
	}
	return out
}

func unique(in []string) map[string]bool {
	out := make(map[string]bool)
	for _, s := range in {
		out[matching.Normalize(s)] = true
	}
	return out
}
