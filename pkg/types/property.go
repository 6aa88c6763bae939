package types

import "time"

type Property struct {
	ID            string     `db:"id" json:"id"`
	OwnerUserID   string     `db:"owner_user_id" json:"ownerUserId"`
	Type          string     `db:"type" json:"type"`
	Oblast        string     `db:"oblast" json:"oblast"`
	Place         string     `db:"place" json:"place"`
	Address       string     `db:"address" json:"address"`
	AreaSqm       int        `db:"area_sqm" json:"areaSqm"`
	PurchaseYear  int        `db:"purchase_year" json:"purchaseYear"`
	Active        bool       `db:"is_active" json:"active"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivatedAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// PropertyTaxAssessment holds the latest approved valuation of a property.
// There is at most one per property.
type PropertyTaxAssessment struct {
	ID                string    `db:"id" json:"id"`
	PropertyID        string    `db:"property_id" json:"propertyId"`
	RequestID         string    `db:"request_id" json:"requestId"`
	Neighborhood      string    `db:"neighborhood" json:"neighborhood"`
	Purpose           string    `db:"purpose" json:"purpose"`
	PurposeOther      *string   `db:"purpose_other" json:"purposeOther"`
	HasAdjoiningParts bool      `db:"has_adjoining_parts" json:"hasAdjoiningParts"`
	Price             float64   `db:"price" json:"price"`
	YearlyTax         float64   `db:"yearly_tax" json:"yearlyTax"`
	TrashFee          float64   `db:"trash_fee" json:"trashFee"`
	ApprovedAt        time.Time `db:"approved_at" json:"approvedAt"`
	ApprovedByAdminID *string   `db:"approved_by_admin_id" json:"approvedByAdminId"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}

type SketchDocType string

const (
	SketchDocTypeSkica  SketchDocType = "SKICA"
	SketchDocTypeSchema SketchDocType = "SCHEMA"
)

type PropertySketch struct {
	ID                string        `db:"id" json:"id"`
	PropertyID        string        `db:"property_id" json:"propertyId"`
	RequestID         string        `db:"request_id" json:"requestId"`
	DocType           SketchDocType `db:"doc_type" json:"docType"`
	TermDays          int           `db:"term_days" json:"termDays"`
	ApprovedAt        time.Time     `db:"approved_at" json:"approvedAt"`
	ApprovedByAdminID *string       `db:"approved_by_admin_id" json:"approvedByAdminId"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
}

// PropertyDebt is one year's yearly tax and trash fee obligation.
type PropertyDebt struct {
	ID              string     `db:"id" json:"id"`
	PropertyID      string     `db:"property_id" json:"propertyId"`
	Year            int        `db:"year" json:"year"`
	DueDate         time.Time  `db:"due_date" json:"dueDate"`
	YearlyTaxAmount float64    `db:"yearly_tax_amount" json:"yearlyTaxAmount"`
	YearlyTaxPaid   bool       `db:"yearly_tax_is_paid" json:"yearlyTaxPaid"`
	YearlyTaxPaidAt *time.Time `db:"yearly_tax_paid_at" json:"yearlyTaxPaidAt"`
	TrashFeeAmount  float64    `db:"trash_fee_amount" json:"trashFeeAmount"`
	TrashFeePaid    bool       `db:"trash_fee_is_paid" json:"trashFeePaid"`
	TrashFeePaidAt  *time.Time `db:"trash_fee_paid_at" json:"trashFeePaidAt"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

type DebtPaymentKind string

const (
	DebtPaymentYearlyTax DebtPaymentKind = "YEARLY_TAX"
	DebtPaymentTrashFee  DebtPaymentKind = "TRASH_FEE"
)
