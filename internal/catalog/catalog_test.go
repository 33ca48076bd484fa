package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signaldesk.com/internal/model"
)

func TestLookup_KnownSymbols(t *testing.T) {
	testCases := []struct {
		symbol        string
		pointValue    float64
		tickValue     float64
		ticksPerPoint int
	}{
		{"NQ", 20, 5, 4},
		{"ES", 50, 12.5, 4},
		{"GC", 100, 10, 10},
		{"MNQ", 2, 0.5, 4},
		{"MGC", 10, 1, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.symbol, func(t *testing.T) {
			c, ok := Lookup(tc.symbol)
			require.True(t, ok)
			assert.Equal(t, tc.symbol, c.Symbol)
			assert.Equal(t, tc.pointValue, c.PointValue)
			assert.Equal(t, tc.tickValue, c.TickValue)
			assert.Equal(t, tc.ticksPerPoint, c.TicksPerPoint)
			assert.NotEmpty(t, c.Name)
		})
	}
}

func TestLookup_NormalizesInput(t *testing.T) {
	c, ok := Lookup("  mnq ")
	require.True(t, ok)
	assert.Equal(t, "MNQ", c.Symbol)
}

func TestLookup_Unknown(t *testing.T) {
	for _, symbol := range []string{"", "CL", "NQZ5"} {
		_, ok := Lookup(symbol)
		assert.False(t, ok, symbol)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	list := All()
	require.Len(t, list, 5)
	assert.Equal(t, "NQ", list[0].Symbol)

	list[0].PointValue = 999
	c, _ := Lookup("NQ")
	assert.Equal(t, 20.0, c.PointValue)
}

func TestValidate_CatalogHoldsInvariant(t *testing.T) {
	assert.Empty(t, Validate())
}

func TestValidate_FlagsViolation(t *testing.T) {
	bad := []model.Contract{
		{Symbol: "OK", PointValue: 20, TickValue: 5, TicksPerPoint: 4},
		{Symbol: "BAD", PointValue: 25, TickValue: 5, TicksPerPoint: 4},
	}

	violations := validate(bad)
	require.Len(t, violations, 1)
	assert.Equal(t, "BAD", violations[0].Symbol)
	assert.Equal(t, 20.0, violations[0].Expected)
	assert.Equal(t, 25.0, violations[0].Actual)
	assert.Contains(t, violations[0].String(), "BAD")
}
