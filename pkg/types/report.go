package types

import "time"

type ReportStatus string

const (
	ReportStatusInReview ReportStatus = "IN_REVIEW"
	ReportStatusResolved ReportStatus = "RESOLVED"
	ReportStatusRejected ReportStatus = "REJECTED"
)

var ReportCategories = []string{
	"road-infrastructure",
	"utilities",
	"public-order",
	"cleanliness-waste",
	"app-issue",
	"other",
}

type ProblemReport struct {
	ID               string       `db:"id" json:"id"`
	UserID           string       `db:"user_id" json:"userId"`
	UserEgn          string       `db:"user_egn" json:"userEgn"`
	UserFullName     string       `db:"user_full_name" json:"userFullName"`
	Category         string       `db:"category" json:"category"`
	Description      string       `db:"description" json:"description"`
	Status           ReportStatus `db:"status" json:"status"`
	AdminNote        *string      `db:"admin_note" json:"adminNote"`
	DecidedAt        *time.Time   `db:"decided_at" json:"decidedAt"`
	DecidedByAdminID *string      `db:"decided_by_admin_id" json:"decidedByAdminId"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updatedAt"`
}
