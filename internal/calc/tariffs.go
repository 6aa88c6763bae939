package calc

import (
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

var fineBaseAmounts = map[types.FineType]float64{
	types.FineSpeedUpTo10:       20,
	types.FineSpeed11To20:       50,
	types.FineSpeed21To30:       100,
	types.FineSpeed31To40:       300,
	types.FineRedLight:          150,
	types.FineNoSeatbelt:        50,
	types.FinePhoneWhileDriving: 50,
	types.FineNoInsurance:       250,
	types.FineNoLicense:         300,
	types.FineParkingForbidden:  30,
}

// FineBaseAmount reports false for unknown fine types.
func FineBaseAmount(t types.FineType) (float64, bool) {
	amount, ok := fineBaseAmounts[t]
	return amount, ok
}

var vignettePrices = map[types.VignetteType]float64{
	types.VignetteWeekly:    15,
	types.VignetteMonthly:   30,
	types.VignetteQuarterly: 54,
	types.VignetteYearly:    97,
}

func VignettePrice(t types.VignetteType) (float64, bool) {
	price, ok := vignettePrices[t]
	return price, ok
}

// VignetteValidUntil returns the last covered day for a vignette bought
// for validFrom.
func VignetteValidUntil(t types.VignetteType, validFrom time.Time) time.Time {
	switch t {
	case types.VignetteWeekly:
		return Day(validFrom).AddDate(0, 0, 7)
	case types.VignetteMonthly:
		return AddMonths(validFrom, 1)
	case types.VignetteQuarterly:
		return AddMonths(validFrom, 3)
	default:
		return AddMonths(validFrom, 12)
	}
}

func TechInspectionValidUntil(inspectionDate time.Time) time.Time {
	return AddMonths(inspectionDate, 12)
}
