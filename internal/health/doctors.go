package health

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type DoctorInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PracticeNumber string `json:"practiceNumber"`
	RzokNo         string `json:"rzokNo"`
	HealthRegion   string `json:"healthRegion"`
	// Shift defaults to 1.
	Shift  *int   `json:"shift"`
	Mobile string `json:"mobile"`
	Oblast string `json:"oblast"`
	City   string `json:"city"`
	Street string `json:"street"`
}

// ListDoctors serves the registry from the cache when it can. Cache
// failures are logged and fall through to the store.
func (s *Service) ListDoctors(ctx context.Context) ([]*types.HealthDoctor, error) {
	cached, ok, err := s.doctors.Doctors(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("doctor cache read failed")
	}
	if ok {
		return cached, nil
	}

	doctors, err := s.store.Doctors().Doctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	if err := s.doctors.SetDoctors(ctx, doctors); err != nil {
		s.logger.WithError(err).Warn("doctor cache write failed")
	}
	return doctors, nil
}

func (s *Service) DoctorByPracticeNumber(ctx context.Context, practiceNumber string) (*types.HealthDoctor, error) {
	pn := strings.TrimSpace(practiceNumber)
	if pn == "" {
		return nil, apperr.Validation("PRACTICE_NUMBER_REQUIRED")
	}
	return s.doctorByPracticeNumber(ctx, s.store, pn)
}

func (s *Service) doctorByPracticeNumber(ctx context.Context, tx store.Tx, pn string) (*types.HealthDoctor, error) {
	d, err := tx.Doctors().DoctorByPracticeNumber(ctx, pn)
	if err != nil {
		if errors.Is(err, types.ErrDoctorNotFound) {
			return nil, apperr.NotFound("DOCTOR_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	return d, nil
}

func required(value, code string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", apperr.Validation(code)
	}
	return v, nil
}

func (s *Service) CreateDoctor(ctx context.Context, in DoctorInput) (*types.HealthDoctor, error) {
	pn := strings.TrimSpace(in.PracticeNumber)
	if !validPracticeNumber(pn) {
		return nil, apperr.Validation("PRACTICE_NUMBER_INVALID")
	}

	_, err := s.store.Doctors().DoctorByPracticeNumber(ctx, pn)
	switch {
	case err == nil:
		return nil, apperr.Conflict("PRACTICE_NUMBER_ALREADY_EXISTS")
	case !errors.Is(err, types.ErrDoctorNotFound):
		return nil, fmt.Errorf("failed to check practice number: %w", err)
	}

	shift := 1
	if in.Shift != nil {
		shift = *in.Shift
	}
	if shift != 1 && shift != 2 {
		return nil, apperr.Validation("SHIFT_INVALID")
	}

	now := s.engine.Now()
	d := &types.HealthDoctor{
		ID:             utils.NanoID(),
		PracticeNumber: pn,
		Shift:          shift,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	fields := []struct {
		dst   *string
		value string
		code  string
	}{
		{&d.FirstName, in.FirstName, "FIRST_NAME_REQUIRED"},
		{&d.LastName, in.LastName, "LAST_NAME_REQUIRED"},
		{&d.RzokNo, in.RzokNo, "RZOK_NO_REQUIRED"},
		{&d.HealthRegion, in.HealthRegion, "HEALTH_REGION_REQUIRED"},
		{&d.Mobile, in.Mobile, "MOBILE_REQUIRED"},
		{&d.Oblast, in.Oblast, "OBLAST_REQUIRED"},
		{&d.City, in.City, "CITY_REQUIRED"},
		{&d.Street, in.Street, "STREET_REQUIRED"},
	}
	for _, f := range fields {
		if *f.dst, err = required(f.value, f.code); err != nil {
			return nil, err
		}
	}

	if err := s.store.Doctors().Create(ctx, d); err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			return nil, apperr.Conflict("DOCTOR_ALREADY_EXISTS")
		}
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}

	s.invalidateDoctors(ctx)
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("ID_REQUIRED")
	}

	if _, err := s.store.Doctors().Doctor(ctx, id); err != nil {
		if errors.Is(err, types.ErrDoctorNotFound) {
			return apperr.NotFound("DOCTOR_NOT_FOUND")
		}
		return fmt.Errorf("failed to load doctor: %w", err)
	}
	if err := s.store.Doctors().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	s.invalidateDoctors(ctx)
	return nil
}

func (s *Service) invalidateDoctors(ctx context.Context) {
	if err := s.doctors.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("doctor cache invalidation failed")
	}
}
