package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

// SeedDoctors syncs the doctor registry with the entries below, matching
// on practice number. Entries that are no longer listed are left alone
// since profiles may still reference them.
//
// To generate new IDs: `go run ./cmd/egov nanoid`
func SeedDoctors(ctx context.Context, doctors store.DoctorStore, logger logrus.FieldLogger) error {
	registry := []types.HealthDoctor{
		{
			ID:             "Dr4Kp9Wm2Xv7Lq1Nz8Tc3Yb6Hs5Jf0Ga",
			FirstName:      "Елена",
			LastName:       "Стоянова",
			PracticeNumber: "2201123456",
			RzokNo:         "22",
			HealthRegion:   "София-град",
			Shift:          1,
			Mobile:         "0887111222",
			Oblast:         "София",
			City:           "София",
			Street:         "ул. Пиротска 5",
		},
		{
			ID:             "Dr8Tn3Qx6Lm1Wp9Zv4Kc7Yb2Hs5Jf0Gb",
			FirstName:      "Петър",
			LastName:       "Колев",
			PracticeNumber: "1602654321",
			RzokNo:         "16",
			HealthRegion:   "Пловдив",
			Shift:          2,
			Mobile:         "0887333444",
			Oblast:         "Пловдив",
			City:           "Пловдив",
			Street:         "бул. Руски 12",
		},
		{
			ID:             "Dr2Vb7Nk5Xq8Lw3Zm1Tp6Yc9Hs4Jf0Gc",
			FirstName:      "Надежда",
			LastName:       "Маринова",
			PracticeNumber: "0303987654",
			RzokNo:         "03",
			HealthRegion:   "Варна",
			Shift:          1,
			Mobile:         "0887555666",
			Oblast:         "Варна",
			City:           "Варна",
			Street:         "ул. Драгоман 3",
		},
	}

	now := time.Now().UTC()
	for i := range registry {
		d := registry[i]
		d.CreatedAt = now
		d.UpdatedAt = now
		if err := doctors.Upsert(ctx, &d); err != nil {
			return fmt.Errorf("failed to upsert doctor %s: %w", d.PracticeNumber, err)
		}
	}

	logger.WithField("count", len(registry)).Info("doctor registry seeded")
	return nil
}
