package calc

import (
	"math"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
)

// VehicleAnnualTax is rounded to two decimals and never negative.
func VehicleAnnualTax(powerKw, manufactureYear int, euroCategory string, currentYear int) float64 {
	kw := float64(powerKw)
	amount := kw * RatePerKw(kw) * AgeCoefficient(manufactureYear, currentYear) * EuroCoefficient(euroCategory)
	return utils.RoundFloat64(math.Max(0, amount), 2)
}

func RatePerKw(kw float64) float64 {
	switch {
	case kw <= 0:
		return 0
	case kw <= 37:
		return 0.34
	case kw <= 55:
		return 0.40
	case kw <= 74:
		return 0.54
	case kw <= 110:
		return 1.10
	default:
		return 1.23
	}
}

// AgeCoefficient treats an implausible year (before 1900 or in the future)
// like a middle-aged vehicle.
func AgeCoefficient(manufactureYear, currentYear int) float64 {
	if manufactureYear < 1900 || manufactureYear > currentYear {
		return 1.2
	}
	age := currentYear - manufactureYear
	switch {
	case age <= 5:
		return 1.0
	case age <= 14:
		return 1.2
	case age <= 20:
		return 1.4
	default:
		return 1.6
	}
}

func EuroCoefficient(euroCategory string) float64 {
	switch strings.ToUpper(strings.TrimSpace(euroCategory)) {
	case "EURO_2":
		return 1.2
	case "EURO_3":
		return 1.1
	case "EURO_4":
		return 1.0
	case "EURO_5":
		return 0.9
	case "EURO_6":
		return 0.85
	default:
		return 1.0
	}
}
