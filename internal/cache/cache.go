// Package cache holds read caches in front of the store.
package cache

import (
	"context"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

// DoctorCache caches the full doctor registry listing. Doctors reports
// false on a miss.
type DoctorCache interface {
	Doctors(ctx context.Context) ([]*types.HealthDoctor, bool, error)
	SetDoctors(ctx context.Context, doctors []*types.HealthDoctor) error
	Invalidate(ctx context.Context) error
}

// NoopDoctorCache always misses.
type NoopDoctorCache struct{}

func (NoopDoctorCache) Doctors(context.Context) ([]*types.HealthDoctor, bool, error) {
	return nil, false, nil
}

func (NoopDoctorCache) SetDoctors(context.Context, []*types.HealthDoctor) error {
	return nil
}

func (NoopDoctorCache) Invalidate(context.Context) error {
	return nil
}
