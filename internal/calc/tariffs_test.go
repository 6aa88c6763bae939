package calc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestFineBaseAmount(t *testing.T) {
	amount, ok := FineBaseAmount(types.FineRedLight)
	assert.True(t, ok)
	assert.Equal(t, 150.0, amount)

	amount, ok = FineBaseAmount(types.FineParkingForbidden)
	assert.True(t, ok)
	assert.Equal(t, 30.0, amount)

	_, ok = FineBaseAmount("DRUNK_DRIVING")
	assert.False(t, ok)
}

func TestVignettes(t *testing.T) {
	from := date(t, "2026-01-31")
	tests := []struct {
		vt    types.VignetteType
		price float64
		until string
	}{
		{types.VignetteWeekly, 15, "2026-02-07"},
		{types.VignetteMonthly, 30, "2026-02-28"},
		{types.VignetteQuarterly, 54, "2026-04-30"},
		{types.VignetteYearly, 97, "2027-01-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.vt), func(t *testing.T) {
			price, ok := VignettePrice(tt.vt)
			assert.True(t, ok)
			assert.Equal(t, tt.price, price)
			assert.Equal(t, tt.until, FormatDate(VignetteValidUntil(tt.vt, from)))
		})
	}
}

func TestTechInspectionValidUntil(t *testing.T) {
	assert.Equal(t, "2027-03-15", FormatDate(TechInspectionValidUntil(date(t, "2026-03-15"))))
	assert.Equal(t, "2029-02-28", FormatDate(TechInspectionValidUntil(date(t, "2028-02-29"))))
}

func TestAddMonths(t *testing.T) {
	assert.Equal(t, "2024-02-29", FormatDate(AddMonths(date(t, "2024-01-31"), 1)))
	assert.Equal(t, "2025-12-31", FormatDate(AddMonths(date(t, "2026-01-31"), -1)))
	assert.Equal(t, "2008-10-14", FormatDate(AddMonths(date(t, "2026-10-14"), -18*12)))
}
