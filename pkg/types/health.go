package types

import (
	"encoding/json"
	"time"
)

type HealthDoctor struct {
	ID             string    `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"firstName"`
	LastName       string    `db:"last_name" json:"lastName"`
	PracticeNumber string    `db:"practice_number" json:"practiceNumber"`
	RzokNo         string    `db:"rzok_no" json:"rzokNo"`
	HealthRegion   string    `db:"health_region" json:"healthRegion"`
	Shift          int       `db:"shift" json:"shift"`
	Mobile         string    `db:"mobile" json:"mobile"`
	Oblast         string    `db:"oblast" json:"oblast"`
	City           string    `db:"city" json:"city"`
	Street         string    `db:"street" json:"street"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// HealthUserProfile is the per-user singleton holding the personal doctor.
// The snapshot is a copy taken at approval time, not a live reference.
type HealthUserProfile struct {
	UserID                       string          `db:"user_id" json:"userId"`
	PersonalDoctorPracticeNumber *string         `db:"personal_doctor_practice_number" json:"personalDoctorPracticeNumber"`
	PersonalDoctorSnapshot       json.RawMessage `db:"personal_doctor_snapshot" json:"personalDoctorSnapshot"` // jsonb
	CreatedAt                    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt                    time.Time       `db:"updated_at" json:"updatedAt"`
}

type HealthReferral struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	Title           string    `db:"title" json:"title"`
	SourceRequestID *string   `db:"source_request_id" json:"sourceRequestId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type HealthAppointment struct {
	ID                   string    `db:"id" json:"id"`
	UserID               string    `db:"user_id" json:"userId"`
	DoctorPracticeNumber string    `db:"doctor_practice_number" json:"doctorPracticeNumber"`
	DoctorName           string    `db:"doctor_name" json:"doctorName"`
	ApptDate             time.Time `db:"appt_date" json:"date"`
	ApptTime             string    `db:"appt_time" json:"time"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}
