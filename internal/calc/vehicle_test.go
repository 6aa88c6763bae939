package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVehicleAnnualTax(t *testing.T) {
	const year = 2026
	tests := []struct {
		name  string
		kw    int
		built int
		euro  string
		want  float64
	}{
		{"ten year old euro 4", 80, year - 10, "EURO_4", 105.60},
		{"new small car", 37, year, "EURO_6", 10.69},
		{"old powerful car", 150, year - 25, "euro_2", 354.24},
		{"future year treated as middle aged", 50, year + 1, " EURO_5 ", 21.6},
		{"unknown euro category", 60, year - 18, "EURO_1", 45.36},
		{"zero power", 0, year - 3, "EURO_4", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, VehicleAnnualTax(tt.kw, tt.built, tt.euro, year), 1e-9)
		})
	}
}

func TestAgeCoefficientBoundaries(t *testing.T) {
	assert.Equal(t, 1.0, AgeCoefficient(2021, 2026))
	assert.Equal(t, 1.2, AgeCoefficient(2020, 2026))
	assert.Equal(t, 1.2, AgeCoefficient(2012, 2026))
	assert.Equal(t, 1.4, AgeCoefficient(2011, 2026))
	assert.Equal(t, 1.4, AgeCoefficient(2006, 2026))
	assert.Equal(t, 1.6, AgeCoefficient(2005, 2026))
	assert.Equal(t, 1.2, AgeCoefficient(1899, 2026))
}

func TestRatePerKwBoundaries(t *testing.T) {
	assert.Equal(t, 0.34, RatePerKw(37))
	assert.Equal(t, 0.40, RatePerKw(38))
	assert.Equal(t, 0.54, RatePerKw(74))
	assert.Equal(t, 1.10, RatePerKw(110))
	assert.Equal(t, 1.23, RatePerKw(111))
}
