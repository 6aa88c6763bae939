// Package memstore is an in-memory store.Store. Transactions hold a single
// lock for their whole duration and restore a snapshot when they fail, so
// concurrent deciders serialize the way row locks make them on postgres.
package memstore

import (
	"context"
	"sync"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type Store struct {
	mu   sync.Mutex
	data *dataset
	view
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{data: newDataset()}
	s.view = view{s: s}
	return s
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(view{s: s, inTx: true}); err != nil {
		s.data = snapshot
		return err
	}

	return nil
}

// view routes repository calls to the dataset, taking the store lock unless
// it is already held by RunInTx.
type view struct {
	s    *Store
	inTx bool
}

func (v view) with(fn func(d *dataset)) {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn(v.s.data)
}

func (v view) Requests() store.RequestStore             { return requests{v} }
func (v view) Files() store.FileStore                   { return files{v} }
func (v view) FileLinks() store.FileLinkStore           { return fileLinks{v} }
func (v view) Users() store.UserStore                   { return users{v} }
func (v view) Admins() store.AdminStore                 { return admins{v} }
func (v view) Documents() store.DocumentStore           { return documents{v} }
func (v view) Properties() store.PropertyStore          { return properties{v} }
func (v view) TaxAssessments() store.TaxAssessmentStore { return taxAssessments{v} }
func (v view) Sketches() store.SketchStore              { return sketches{v} }
func (v view) Debts() store.DebtStore                   { return debts{v} }
func (v view) Vehicles() store.VehicleStore             { return vehicles{v} }
func (v view) VehicleTaxes() store.VehicleTaxStore      { return vehicleTaxes{v} }
func (v view) Vignettes() store.VignetteStore           { return vignettes{v} }
func (v view) Fines() store.FineStore                   { return fines{v} }
func (v view) Doctors() store.DoctorStore               { return doctors{v} }
func (v view) HealthProfiles() store.HealthProfileStore { return healthProfiles{v} }
func (v view) Referrals() store.ReferralStore           { return referrals{v} }
func (v view) Appointments() store.AppointmentStore     { return appointments{v} }
func (v view) Reports() store.ReportStore               { return reports{v} }

type dataset struct {
	requests       *table[types.Request]
	files          *table[types.AppFile]
	fileLinks      *table[types.FileLink]
	users          *table[types.User]
	admins         *table[types.Admin]
	documents      *table[types.Document]
	properties     *table[types.Property]
	taxAssessments *table[types.PropertyTaxAssessment]
	sketches       *table[types.PropertySketch]
	debts          *table[types.PropertyDebt]
	vehicles       *table[types.TransportVehicle]
	vehicleTaxes   *table[types.VehicleTaxPayment]
	vignettes      *table[types.TransportVignette]
	fines          *table[types.TransportFine]
	doctors        *table[types.HealthDoctor]
	healthProfiles *table[types.HealthUserProfile]
	referrals      *table[types.HealthReferral]
	appointments   *table[types.HealthAppointment]
	reports        *table[types.ProblemReport]
}

func newDataset() *dataset {
	return &dataset{
		requests:       newTable[types.Request](),
		files:          newTable[types.AppFile](),
		fileLinks:      newTable[types.FileLink](),
		users:          newTable[types.User](),
		admins:         newTable[types.Admin](),
		documents:      newTable[types.Document](),
		properties:     newTable[types.Property](),
		taxAssessments: newTable[types.PropertyTaxAssessment](),
		sketches:       newTable[types.PropertySketch](),
		debts:          newTable[types.PropertyDebt](),
		vehicles:       newTable[types.TransportVehicle](),
		vehicleTaxes:   newTable[types.VehicleTaxPayment](),
		vignettes:      newTable[types.TransportVignette](),
		fines:          newTable[types.TransportFine](),
		doctors:        newTable[types.HealthDoctor](),
		healthProfiles: newTable[types.HealthUserProfile](),
		referrals:      newTable[types.HealthReferral](),
		appointments:   newTable[types.HealthAppointment](),
		reports:        newTable[types.ProblemReport](),
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		requests:       d.requests.clone(),
		files:          d.files.clone(),
		fileLinks:      d.fileLinks.clone(),
		users:          d.users.clone(),
		admins:         d.admins.clone(),
		documents:      d.documents.clone(),
		properties:     d.properties.clone(),
		taxAssessments: d.taxAssessments.clone(),
		sketches:       d.sketches.clone(),
		debts:          d.debts.clone(),
		vehicles:       d.vehicles.clone(),
		vehicleTaxes:   d.vehicleTaxes.clone(),
		vignettes:      d.vignettes.clone(),
		fines:          d.fines.clone(),
		doctors:        d.doctors.clone(),
		healthProfiles: d.healthProfiles.clone(),
		referrals:      d.referrals.clone(),
		appointments:   d.appointments.clone(),
		reports:        d.reports.clone(),
	}
}
