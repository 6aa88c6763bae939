package store

import (
	"context"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

// Tx exposes every repository bound to one unit of work. Outside RunInTx
// each call runs on its own.
type Tx interface {
	Requests() RequestStore
	Files() FileStore
	FileLinks() FileLinkStore
	Users() UserStore
	Admins() AdminStore
	Documents() DocumentStore
	Properties() PropertyStore
	TaxAssessments() TaxAssessmentStore
	Sketches() SketchStore
	Debts() DebtStore
	Vehicles() VehicleStore
	VehicleTaxes() VehicleTaxStore
	Vignettes() VignetteStore
	Fines() FineStore
	Doctors() DoctorStore
	HealthProfiles() HealthProfileStore
	Referrals() ReferralStore
	Appointments() AppointmentStore
	Reports() ReportStore
}

type Store interface {
	Tx
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

type RequestFilter struct {
	Domain        types.RequestDomain
	UserID        string
	Status        types.RequestStatus
	ExcludeStatus types.RequestStatus
}

// PendingQuery narrows the duplicate-pending check. Empty fields are not
// part of the predicate. RegNumber compares case-insensitively.
type PendingQuery struct {
	Domain       types.RequestDomain
	Kind         types.RequestKind
	UserID       string
	TargetID     string
	RegNumber    string
	DocumentType types.DocumentType
}

type Decision struct {
	RequestID string
	Status    types.RequestStatus
	AdminID   string
	Note      string
	At        time.Time
}

type RequestStore interface {
	Create(ctx context.Context, req *types.Request) error
	Request(ctx context.Context, id string) (*types.Request, error)
	// RequestForUpdate locks the row until the surrounding transaction ends.
	RequestForUpdate(ctx context.Context, id string) (*types.Request, error)
	Requests(ctx context.Context, filter RequestFilter) ([]*types.Request, error)
	ExistsPending(ctx context.Context, q PendingQuery) (bool, error)
	// Decide moves a PENDING request to a terminal status and reports
	// whether a row changed.
	Decide(ctx context.Context, d Decision) (bool, error)
	SetTarget(ctx context.Context, id string, targetID *string, at time.Time) error
}

type FileStore interface {
	Create(ctx context.Context, file *types.AppFile) error
	File(ctx context.Context, id string) (*types.AppFile, error)
	Delete(ctx context.Context, id string) error
}

type FileLinkStore interface {
	Create(ctx context.Context, link *types.FileLink) error
	Link(ctx context.Context, entityType types.EntityType, entityID string, tag types.FileTag) (*types.FileLink, error)
	Links(ctx context.Context, entityType types.EntityType, entityID string) ([]*types.FileLink, error)
	Delete(ctx context.Context, entityType types.EntityType, entityID string, tag types.FileTag) error
}

type UserStore interface {
	Create(ctx context.Context, user *types.User) error
	User(ctx context.Context, id string) (*types.User, error)
	UserByEgn(ctx context.Context, egn string) (*types.User, error)
	// Upsert matches on egn.
	Upsert(ctx context.Context, user *types.User) error
}

type AdminStore interface {
	AdminByUsername(ctx context.Context, username string) (*types.Admin, error)
	Upsert(ctx context.Context, admin *types.Admin) error
}

type DocumentStore interface {
	Create(ctx context.Context, doc *types.Document) error
	Document(ctx context.Context, id string) (*types.Document, error)
	DocumentByUserAndType(ctx context.Context, userID string, docType types.DocumentType) (*types.Document, error)
	DocumentsByUser(ctx context.Context, userID string) ([]*types.Document, error)
	Delete(ctx context.Context, id string) error
}

type PropertyStore interface {
	Create(ctx context.Context, p *types.Property) error
	Property(ctx context.Context, id string) (*types.Property, error)
	PropertiesByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]*types.Property, error)
	Update(ctx context.Context, p *types.Property) error
}

type TaxAssessmentStore interface {
	Create(ctx context.Context, a *types.PropertyTaxAssessment) error
	AssessmentByProperty(ctx context.Context, propertyID string) (*types.PropertyTaxAssessment, error)
	Update(ctx context.Context, a *types.PropertyTaxAssessment) error
}

type SketchStore interface {
	SketchByProperty(ctx context.Context, propertyID string) (*types.PropertySketch, error)
	// Upsert keeps a single sketch per property.
	Upsert(ctx context.Context, s *types.PropertySketch) error
}

type DebtStore interface {
	Create(ctx context.Context, d *types.PropertyDebt) error
	Debt(ctx context.Context, propertyID string, year int) (*types.PropertyDebt, error)
	DebtsByProperty(ctx context.Context, propertyID string) ([]*types.PropertyDebt, error)
	Update(ctx context.Context, d *types.PropertyDebt) error
}

type VehicleStore interface {
	Create(ctx context.Context, v *types.TransportVehicle) error
	Vehicle(ctx context.Context, id string) (*types.TransportVehicle, error)
	VehiclesByUser(ctx context.Context, userID string) ([]*types.TransportVehicle, error)
	ExistsByRegNumber(ctx context.Context, regNumber string) (bool, error)
	Update(ctx context.Context, v *types.TransportVehicle) error
}

type VehicleTaxStore interface {
	// Upsert keeps a single payment per (vehicle, tax year).
	Upsert(ctx context.Context, p *types.VehicleTaxPayment) error
	PaymentsByVehicle(ctx context.Context, vehicleID string) ([]*types.VehicleTaxPayment, error)
}

type VignetteStore interface {
	Create(ctx context.Context, v *types.TransportVignette) error
	// ActiveForVehicle finds a vignette whose validity covers day, inclusive.
	// It returns nil without error when there is none.
	ActiveForVehicle(ctx context.Context, vehicleID string, day time.Time) (*types.TransportVignette, error)
	VignettesByUser(ctx context.Context, userID string) ([]*types.TransportVignette, error)
}

type FineStore interface {
	Create(ctx context.Context, f *types.TransportFine) error
	Fine(ctx context.Context, id string) (*types.TransportFine, error)
	FinesByEgn(ctx context.Context, egn string) ([]*types.TransportFine, error)
	Fines(ctx context.Context) ([]*types.TransportFine, error)
	Update(ctx context.Context, f *types.TransportFine) error
}

type DoctorStore interface {
	Create(ctx context.Context, d *types.HealthDoctor) error
	Doctor(ctx context.Context, id string) (*types.HealthDoctor, error)
	DoctorByPracticeNumber(ctx context.Context, practiceNumber string) (*types.HealthDoctor, error)
	Doctors(ctx context.Context) ([]*types.HealthDoctor, error)
	Delete(ctx context.Context, id string) error
	// Upsert matches on practice number.
	Upsert(ctx context.Context, d *types.HealthDoctor) error
}

type HealthProfileStore interface {
	Profile(ctx context.Context, userID string) (*types.HealthUserProfile, error)
	Upsert(ctx context.Context, p *types.HealthUserProfile) error
}

type ReferralStore interface {
	Create(ctx context.Context, r *types.HealthReferral) error
	Referral(ctx context.Context, id string) (*types.HealthReferral, error)
	ReferralsByUser(ctx context.Context, userID string) ([]*types.HealthReferral, error)
}

type AppointmentStore interface {
	// Create reports types.ErrAppointmentSlotTaken when the doctor or the
	// user already holds the slot.
	Create(ctx context.Context, a *types.HealthAppointment) error
	AppointmentsByUser(ctx context.Context, userID string) ([]*types.HealthAppointment, error)
	BusySlots(ctx context.Context, practiceNumber string, day time.Time) ([]string, error)
}

type ReportFilter struct {
	UserID string
	Status types.ReportStatus
}

type ReportStore interface {
	Create(ctx context.Context, r *types.ProblemReport) error
	Report(ctx context.Context, id string) (*types.ProblemReport, error)
	Reports(ctx context.Context, filter ReportFilter) ([]*types.ProblemReport, error)
	// Decide moves an IN_REVIEW report to status and reports whether a row
	// changed.
	Decide(ctx context.Context, id string, status types.ReportStatus, adminID, note string, at time.Time) (bool, error)
}
