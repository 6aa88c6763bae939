package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type PostgresStore struct {
	pool *pgxpool.Pool
	*postgresTx
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, postgresTx: newPostgresTx(pool)}
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(newPostgresTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}

	return nil
}

type postgresTx struct {
	requests       *RequestRepository
	files          *FileRepository
	fileLinks      *FileLinkRepository
	users          *UserRepository
	admins         *AdminRepository
	documents      *DocumentRepository
	properties     *PropertyRepository
	taxAssessments *TaxAssessmentRepository
	sketches       *SketchRepository
	debts          *DebtRepository
	vehicles       *VehicleRepository
	vehicleTaxes   *VehicleTaxRepository
	vignettes      *VignetteRepository
	fines          *FineRepository
	doctors        *DoctorRepository
	healthProfiles *HealthProfileRepository
	referrals      *ReferralRepository
	appointments   *AppointmentRepository
	reports        *ReportRepository
}

func newPostgresTx(db querier) *postgresTx {
	return &postgresTx{
		requests:       &RequestRepository{db: db},
		files:          &FileRepository{db: db},
		fileLinks:      &FileLinkRepository{db: db},
		users:          &UserRepository{db: db},
		admins:         &AdminRepository{db: db},
		documents:      &DocumentRepository{db: db},
		properties:     &PropertyRepository{db: db},
		taxAssessments: &TaxAssessmentRepository{db: db},
		sketches:       &SketchRepository{db: db},
		debts:          &DebtRepository{db: db},
		vehicles:       &VehicleRepository{db: db},
		vehicleTaxes:   &VehicleTaxRepository{db: db},
		vignettes:      &VignetteRepository{db: db},
		fines:          &FineRepository{db: db},
		doctors:        &DoctorRepository{db: db},
		healthProfiles: &HealthProfileRepository{db: db},
		referrals:      &ReferralRepository{db: db},
		appointments:   &AppointmentRepository{db: db},
		reports:        &ReportRepository{db: db},
	}
}

func (t *postgresTx) Requests() RequestStore             { return t.requests }
func (t *postgresTx) Files() FileStore                   { return t.files }
func (t *postgresTx) FileLinks() FileLinkStore           { return t.fileLinks }
func (t *postgresTx) Users() UserStore                   { return t.users }
func (t *postgresTx) Admins() AdminStore                 { return t.admins }
func (t *postgresTx) Documents() DocumentStore           { return t.documents }
func (t *postgresTx) Properties() PropertyStore          { return t.properties }
func (t *postgresTx) TaxAssessments() TaxAssessmentStore { return t.taxAssessments }
func (t *postgresTx) Sketches() SketchStore              { return t.sketches }
func (t *postgresTx) Debts() DebtStore                   { return t.debts }
func (t *postgresTx) Vehicles() VehicleStore             { return t.vehicles }
func (t *postgresTx) VehicleTaxes() VehicleTaxStore      { return t.vehicleTaxes }
func (t *postgresTx) Vignettes() VignetteStore           { return t.vignettes }
func (t *postgresTx) Fines() FineStore                   { return t.fines }
func (t *postgresTx) Doctors() DoctorStore               { return t.doctors }
func (t *postgresTx) HealthProfiles() HealthProfileStore { return t.healthProfiles }
func (t *postgresTx) Referrals() ReferralStore           { return t.referrals }
func (t *postgresTx) Appointments() AppointmentStore     { return t.appointments }
func (t *postgresTx) Reports() ReportStore               { return t.reports }
