package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type doctors struct{ v view }

func (r doctors) Create(_ context.Context, doc *types.HealthDoctor) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, dup := d.doctors.first(func(x types.HealthDoctor) bool {
			return x.ID == doc.ID || x.PracticeNumber == doc.PracticeNumber
		}); dup {
			err = types.ErrDuplicateKey
			return
		}
		d.doctors.put(doc.ID, *doc)
	})
	return err
}

func (r doctors) Doctor(_ context.Context, id string) (*types.HealthDoctor, error) {
	var out *types.HealthDoctor
	r.v.with(func(d *dataset) {
		if row, ok := d.doctors.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrDoctorNotFound
	}
	return out, nil
}

func (r doctors) DoctorByPracticeNumber(_ context.Context, practiceNumber string) (*types.HealthDoctor, error) {
	var out *types.HealthDoctor
	r.v.with(func(d *dataset) {
		if row, ok := d.doctors.first(func(x types.HealthDoctor) bool { return x.PracticeNumber == practiceNumber }); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrDoctorNotFound
	}
	return out, nil
}

func (r doctors) Doctors(_ context.Context) ([]*types.HealthDoctor, error) {
	out := make([]*types.HealthDoctor, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.doctors.newest(nil) {
			out = append(out, ptr(row))
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (r doctors) Delete(_ context.Context, id string) error {
	r.v.with(func(d *dataset) {
		d.doctors.del(id)
	})
	return nil
}

func (r doctors) Upsert(_ context.Context, doc *types.HealthDoctor) error {
	r.v.with(func(d *dataset) {
		row := *doc
		if existing, ok := d.doctors.first(func(x types.HealthDoctor) bool {
			return x.PracticeNumber == doc.PracticeNumber
		}); ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}
		d.doctors.put(row.ID, row)
	})
	return nil
}

type healthProfiles struct{ v view }

func cloneProfile(p types.HealthUserProfile) types.HealthUserProfile {
	p.PersonalDoctorSnapshot = cloneBytes(p.PersonalDoctorSnapshot)
	return p
}

func (r healthProfiles) Profile(_ context.Context, userID string) (*types.HealthUserProfile, error) {
	var out *types.HealthUserProfile
	r.v.with(func(d *dataset) {
		if row, ok := d.healthProfiles.get(userID); ok {
			out = ptr(cloneProfile(row))
		}
	})
	if out == nil {
		return nil, types.ErrHealthProfileNotFound
	}
	return out, nil
}

func (r healthProfiles) Upsert(_ context.Context, p *types.HealthUserProfile) error {
	r.v.with(func(d *dataset) {
		row := cloneProfile(*p)
		if existing, ok := d.healthProfiles.get(p.UserID); ok {
			row.CreatedAt = existing.CreatedAt
		}
		d.healthProfiles.put(p.UserID, row)
	})
	return nil
}

type referrals struct{ v view }

func (r referrals) Create(_ context.Context, ref *types.HealthReferral) error {
	r.v.with(func(d *dataset) {
		d.referrals.put(ref.ID, *ref)
	})
	return nil
}

func (r referrals) Referral(_ context.Context, id string) (*types.HealthReferral, error) {
	var out *types.HealthReferral
	r.v.with(func(d *dataset) {
		if row, ok := d.referrals.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrReferralNotFound
	}
	return out, nil
}

func (r referrals) ReferralsByUser(_ context.Context, userID string) ([]*types.HealthReferral, error) {
	out := make([]*types.HealthReferral, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.referrals.newest(func(x types.HealthReferral) bool { return x.UserID == userID }) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

type appointments struct{ v view }

func sameSlot(a, b types.HealthAppointment) bool {
	return calc.Day(a.ApptDate).Equal(calc.Day(b.ApptDate)) && a.ApptTime == b.ApptTime
}

func (r appointments) Create(_ context.Context, a *types.HealthAppointment) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, taken := d.appointments.first(func(x types.HealthAppointment) bool {
			return sameSlot(x, *a) && (x.DoctorPracticeNumber == a.DoctorPracticeNumber || x.UserID == a.UserID)
		}); taken {
			err = types.ErrAppointmentSlotTaken
			return
		}
		d.appointments.put(a.ID, *a)
	})
	return err
}

func (r appointments) AppointmentsByUser(_ context.Context, userID string) ([]*types.HealthAppointment, error) {
	out := make([]*types.HealthAppointment, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.appointments.newest(func(x types.HealthAppointment) bool { return x.UserID == userID }) {
			out = append(out, ptr(row))
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ApptDate.Equal(out[j].ApptDate) {
			return out[i].ApptDate.After(out[j].ApptDate)
		}
		return out[i].ApptTime > out[j].ApptTime
	})
	return out, nil
}

func (r appointments) BusySlots(_ context.Context, practiceNumber string, day time.Time) ([]string, error) {
	slots := make([]string, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.appointments.newest(func(x types.HealthAppointment) bool {
			return x.DoctorPracticeNumber == practiceNumber && calc.Day(x.ApptDate).Equal(calc.Day(day))
		}) {
			slots = append(slots, row.ApptTime)
		}
	})
	sort.Strings(slots)
	return slots, nil
}
