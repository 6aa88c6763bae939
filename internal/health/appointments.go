package health

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type AppointmentInput struct {
	DoctorPracticeNumber string `json:"doctorPracticeNumber"`
	DoctorName           string `json:"doctorName"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
}

func (s *Service) BookAppointment(ctx context.Context, userID string, in AppointmentInput) (*types.HealthAppointment, error) {
	pn := strings.TrimSpace(in.DoctorPracticeNumber)
	if !validPracticeNumber(pn) {
		return nil, apperr.Validation("PRACTICE_NUMBER_INVALID")
	}
	doctorName, err := required(in.DoctorName, "DOCTOR_NAME_REQUIRED")
	if err != nil {
		return nil, err
	}
	slot, err := required(in.Time, "TIME_REQUIRED")
	if err != nil {
		return nil, err
	}
	rawDate, err := required(in.Date, "DATE_REQUIRED")
	if err != nil {
		return nil, err
	}
	day, err := calc.ParseDate(rawDate)
	if err != nil {
		return nil, apperr.Validation("DATE_INVALID")
	}

	now := s.engine.Now()
	a := &types.HealthAppointment{
		ID:                   utils.NanoID(),
		UserID:               userID,
		DoctorPracticeNumber: pn,
		DoctorName:           doctorName,
		ApptDate:             day,
		ApptTime:             slot,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.Appointments().Create(ctx, a); err != nil {
		if errors.Is(err, types.ErrAppointmentSlotTaken) {
			return nil, apperr.Conflict("APPOINTMENT_SLOT_TAKEN")
		}
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}
	return a, nil
}

func (s *Service) MyAppointments(ctx context.Context, userID string) ([]*types.HealthAppointment, error) {
	as, err := s.store.Appointments().AppointmentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return as, nil
}

// BusySlots returns the booked times of a doctor on date, ascending.
func (s *Service) BusySlots(ctx context.Context, practiceNumber, date string) ([]string, error) {
	pn := strings.TrimSpace(practiceNumber)
	if pn == "" {
		return nil, apperr.Validation("PRACTICE_NUMBER_REQUIRED")
	}
	day, err := calc.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, apperr.Validation("DATE_INVALID")
	}
	slots, err := s.store.Appointments().BusySlots(ctx, pn, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list busy slots: %w", err)
	}
	return slots, nil
}
