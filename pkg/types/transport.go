package types

import "time"

type TransportVehicle struct {
	ID                       string     `db:"id" json:"id"`
	UserID                   string     `db:"user_id" json:"userId"`
	OwnerEgn                 string     `db:"owner_egn" json:"ownerEgn"`
	RegNumber                string     `db:"reg_number" json:"regNumber"`
	Brand                    string     `db:"brand" json:"brand"`
	Model                    string     `db:"model" json:"model"`
	ManufactureYear          int        `db:"manufacture_year" json:"manufactureYear"`
	PowerKw                  int        `db:"power_kw" json:"powerKw"`
	EuroCategory             string     `db:"euro_category" json:"euroCategory"`
	TechInspectionDate       *time.Time `db:"tech_inspection_date" json:"techInspectionDate"`
	TechInspectionValidUntil *time.Time `db:"tech_inspection_valid_until" json:"techInspectionValidUntil"`
	TechInspectionApprovedAt *time.Time `db:"tech_inspection_approved_at" json:"techInspectionApprovedAt"`
	CreatedAt                time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt                time.Time  `db:"updated_at" json:"updatedAt"`
}

type VehicleTaxPayment struct {
	ID        string    `db:"id" json:"id"`
	VehicleID string    `db:"vehicle_id" json:"vehicleId"`
	TaxYear   int       `db:"tax_year" json:"taxYear"`
	Amount    float64   `db:"amount" json:"amount"`
	PaidAt    time.Time `db:"paid_at" json:"paidAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type VignetteType string

const (
	VignetteWeekly    VignetteType = "WEEKLY"
	VignetteMonthly   VignetteType = "MONTHLY"
	VignetteQuarterly VignetteType = "QUARTERLY"
	VignetteYearly    VignetteType = "YEARLY"
)

type TransportVignette struct {
	ID         string       `db:"id" json:"id"`
	UserID     string       `db:"user_id" json:"userId"`
	OwnerEgn   string       `db:"owner_egn" json:"ownerEgn"`
	VehicleID  string       `db:"vehicle_id" json:"vehicleId"`
	Type       VignetteType `db:"type" json:"type"`
	Price      float64      `db:"price" json:"price"`
	ValidFrom  time.Time    `db:"valid_from" json:"validFrom"`
	ValidUntil time.Time    `db:"valid_until" json:"validUntil"`
	PaidAt     time.Time    `db:"paid_at" json:"paidAt"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
}

type FineType string

const (
	FineSpeedUpTo10       FineType = "SPEED_UP_TO_10"
	FineSpeed11To20       FineType = "SPEED_11_20"
	FineSpeed21To30       FineType = "SPEED_21_30"
	FineSpeed31To40       FineType = "SPEED_31_40"
	FineRedLight          FineType = "RED_LIGHT"
	FineNoSeatbelt        FineType = "NO_SEATBELT"
	FinePhoneWhileDriving FineType = "PHONE_WHILE_DRIVING"
	FineNoInsurance       FineType = "NO_INSURANCE"
	FineNoLicense         FineType = "NO_LICENSE"
	FineParkingForbidden  FineType = "PARKING_FORBIDDEN"
)

type TransportFine struct {
	ID        string     `db:"id" json:"id"`
	UserID    *string    `db:"user_id" json:"userId"`
	Egn       string     `db:"egn" json:"egn"`
	Type      FineType   `db:"type" json:"type"`
	Amount    float64    `db:"amount" json:"amount"`
	IssuedAt  time.Time  `db:"issued_at" json:"issuedAt"`
	Paid      bool       `db:"paid" json:"paid"`
	PaidAt    *time.Time `db:"paid_at" json:"paidAt"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}
