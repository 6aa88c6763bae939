package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const (
	doctorTableName        = "health_doctors"
	healthProfileTableName = "health_user_profiles"
	referralTableName      = "health_referrals"
	appointmentTableName   = "health_appointments"
)

var (
	doctorColumns        = utils.StructTagValues(types.HealthDoctor{})
	healthProfileColumns = utils.StructTagValues(types.HealthUserProfile{})
	referralColumns      = utils.StructTagValues(types.HealthReferral{})
	appointmentColumns   = utils.StructTagValues(types.HealthAppointment{})
)

type DoctorRepository struct {
	db querier
}

func (r *DoctorRepository) Create(ctx context.Context, d *types.HealthDoctor) error {
	query, args, err := psql().
		Insert(doctorTableName).
		SetMap(utils.StructToMap(d)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create doctor query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create doctor: %w", err)
	}

	return nil
}

func (r *DoctorRepository) Doctor(ctx context.Context, id string) (*types.HealthDoctor, error) {
	return getRow[types.HealthDoctor](ctx, r.db,
		psql().Select(doctorColumns...).From(doctorTableName).Where(sq.Eq{"id": id}),
		types.ErrDoctorNotFound,
	)
}

func (r *DoctorRepository) DoctorByPracticeNumber(ctx context.Context, practiceNumber string) (*types.HealthDoctor, error) {
	return getRow[types.HealthDoctor](ctx, r.db,
		psql().Select(doctorColumns...).From(doctorTableName).Where(sq.Eq{"practice_number": practiceNumber}),
		types.ErrDoctorNotFound,
	)
}

func (r *DoctorRepository) Doctors(ctx context.Context) ([]*types.HealthDoctor, error) {
	return selectRows[types.HealthDoctor](ctx, r.db,
		psql().Select(doctorColumns...).From(doctorTableName).OrderBy("last_name", "first_name"),
	)
}

func (r *DoctorRepository) Delete(ctx context.Context, id string) error {
	return deleteRows(ctx, r.db, doctorTableName, sq.Eq{"id": id})
}

func (r *DoctorRepository) Upsert(ctx context.Context, d *types.HealthDoctor) error {
	query, args, err := psql().
		Insert(doctorTableName).
		SetMap(utils.StructToMap(d)).
		Suffix("ON CONFLICT (practice_number) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, rzok_no = EXCLUDED.rzok_no, health_region = EXCLUDED.health_region, shift = EXCLUDED.shift, mobile = EXCLUDED.mobile, oblast = EXCLUDED.oblast, city = EXCLUDED.city, street = EXCLUDED.street, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert doctor query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert doctor: %w", err)
	}

	return nil
}

type HealthProfileRepository struct {
	db querier
}

func (r *HealthProfileRepository) Profile(ctx context.Context, userID string) (*types.HealthUserProfile, error) {
	return getRow[types.HealthUserProfile](ctx, r.db,
		psql().Select(healthProfileColumns...).From(healthProfileTableName).Where(sq.Eq{"user_id": userID}),
		types.ErrHealthProfileNotFound,
	)
}

func (r *HealthProfileRepository) Upsert(ctx context.Context, p *types.HealthUserProfile) error {
	query, args, err := psql().
		Insert(healthProfileTableName).
		SetMap(utils.StructToMap(p)).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET personal_doctor_practice_number = EXCLUDED.personal_doctor_practice_number, personal_doctor_snapshot = EXCLUDED.personal_doctor_snapshot, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert health profile query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert health profile: %w", err)
	}

	return nil
}

type ReferralRepository struct {
	db querier
}

func (r *ReferralRepository) Create(ctx context.Context, ref *types.HealthReferral) error {
	return insertRow(ctx, r.db, referralTableName, ref)
}

func (r *ReferralRepository) Referral(ctx context.Context, id string) (*types.HealthReferral, error) {
	return getRow[types.HealthReferral](ctx, r.db,
		psql().Select(referralColumns...).From(referralTableName).Where(sq.Eq{"id": id}),
		types.ErrReferralNotFound,
	)
}

func (r *ReferralRepository) ReferralsByUser(ctx context.Context, userID string) ([]*types.HealthReferral, error) {
	return selectRows[types.HealthReferral](ctx, r.db,
		psql().Select(referralColumns...).From(referralTableName).Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"),
	)
}

type AppointmentRepository struct {
	db querier
}

func (r *AppointmentRepository) Create(ctx context.Context, a *types.HealthAppointment) error {
	query, args, err := psql().
		Insert(appointmentTableName).
		SetMap(utils.StructToMap(a)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create appointment query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrAppointmentSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return nil
}

func (r *AppointmentRepository) AppointmentsByUser(ctx context.Context, userID string) ([]*types.HealthAppointment, error) {
	return selectRows[types.HealthAppointment](ctx, r.db,
		psql().Select(appointmentColumns...).From(appointmentTableName).Where(sq.Eq{"user_id": userID}).OrderBy("appt_date DESC", "appt_time DESC"),
	)
}

func (r *AppointmentRepository) BusySlots(ctx context.Context, practiceNumber string, day time.Time) ([]string, error) {
	query, args, err := psql().
		Select("appt_time").
		From(appointmentTableName).
		Where(sq.Eq{"doctor_practice_number": practiceNumber, "appt_date": day}).
		OrderBy("appt_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate busy slots query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch busy slots: %w", err)
	}
	defer rows.Close()

	var slots = make([]string, 0)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("failed to scan busy slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}
