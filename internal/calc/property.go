// Package calc holds the pricing and tax formulas used when requests are
// approved and when citizens pay. Every function is pure.
package calc

import (
	"math"
	"strings"
)

const MinPropertyPrice = 1000

// PropertyPrice values a property. The location multipliers match on
// lowercase substrings of free text, so "гр. София-град" counts as Sofia.
func PropertyPrice(areaSqm int, propertyType, oblast, district string) int64 {
	base := BasePricePerSqm(propertyType)
	price := int64(math.Round(float64(int64(areaSqm)*base) * OblastMultiplier(oblast) * DistrictMultiplier(district)))
	if price < MinPropertyPrice {
		return MinPropertyPrice
	}
	return price
}

func BasePricePerSqm(propertyType string) int64 {
	switch strings.ToLower(propertyType) {
	case "апартамент":
		return 1200
	case "къща":
		return 1050
	case "гараж":
		return 520
	case "земя":
		return 180
	default:
		return 900
	}
}

func OblastMultiplier(oblast string) float64 {
	o := strings.ToLower(oblast)
	switch {
	case strings.Contains(o, "софия"):
		return 1.6
	case strings.Contains(o, "пловдив"), strings.Contains(o, "варна"):
		return 1.25
	case strings.Contains(o, "бургас"):
		return 1.2
	default:
		return 1.0
	}
}

func DistrictMultiplier(district string) float64 {
	d := strings.ToLower(district)
	switch {
	case strings.TrimSpace(d) == "":
		return 1.0
	case strings.Contains(d, "цент"):
		return 1.2
	case strings.Contains(d, "краен"), strings.Contains(d, "край"), strings.Contains(d, "кв."):
		return 1.0
	default:
		return 1.05
	}
}

var purposeRates = []struct {
	purpose string
	rate    float64
}{
	{"Търговско", 0.002},
	{"Офис", 0.0018},
	{"Склад / Производствено", 0.0016},
	{"Земеделско", 0.0012},
	{"Парцел", 0.0013},
	{"Гараж", 0.0015},
	{"Паркомясто", 0.0014},
}

const defaultPurposeRate = 0.0015

func PurposeRate(purpose string) float64 {
	for _, p := range purposeRates {
		if strings.EqualFold(p.purpose, purpose) {
			return p.rate
		}
	}
	return defaultPurposeRate
}

func YearlyTax(price float64, purpose string) int64 {
	return int64(math.Round(price * PurposeRate(purpose)))
}

func TrashFee(price float64, hasAdjoiningParts bool) int64 {
	v := price * 0.0008
	if hasAdjoiningParts {
		v *= 1.1
	}
	return int64(math.Round(v))
}

// Assessment bundles the three amounts stored on a tax assessment.
type Assessment struct {
	Price     int64 `json:"price"`
	YearlyTax int64 `json:"yearlyTax"`
	TrashFee  int64 `json:"trashFee"`
}

func Assess(areaSqm int, propertyType, oblast, district, purpose string, hasAdjoiningParts bool) Assessment {
	price := PropertyPrice(areaSqm, propertyType, oblast, district)
	return Assessment{
		Price:     price,
		YearlyTax: YearlyTax(float64(price), purpose),
		TrashFee:  TrashFee(float64(price), hasAdjoiningParts),
	}
}
