package store

import (
	"context"
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const (
	propertyTableName      = "properties"
	taxAssessmentTableName = "property_tax_assessments"
	sketchTableName        = "property_sketches"
	debtTableName          = "property_debts"
)

var (
	propertyColumns      = utils.StructTagValues(types.Property{})
	taxAssessmentColumns = utils.StructTagValues(types.PropertyTaxAssessment{})
	sketchColumns        = utils.StructTagValues(types.PropertySketch{})
	debtColumns          = utils.StructTagValues(types.PropertyDebt{})
)

type PropertyRepository struct {
	db querier
}

func (r *PropertyRepository) Create(ctx context.Context, p *types.Property) error {
	return insertRow(ctx, r.db, propertyTableName, p)
}

func (r *PropertyRepository) Property(ctx context.Context, id string) (*types.Property, error) {
	return getRow[types.Property](ctx, r.db,
		psql().Select(propertyColumns...).From(propertyTableName).Where(sq.Eq{"id": id}),
		types.ErrPropertyNotFound,
	)
}

func (r *PropertyRepository) PropertiesByOwner(ctx context.Context, ownerID string, activeOnly bool) ([]*types.Property, error) {
	builder := psql().Select(propertyColumns...).From(propertyTableName).
		Where(sq.Eq{"owner_user_id": ownerID}).
		OrderBy("created_at DESC")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	return selectRows[types.Property](ctx, r.db, builder)
}

func (r *PropertyRepository) Update(ctx context.Context, p *types.Property) error {
	return updateRow(ctx, r.db, propertyTableName, p, sq.Eq{"id": p.ID})
}

type TaxAssessmentRepository struct {
	db querier
}

func (r *TaxAssessmentRepository) Create(ctx context.Context, a *types.PropertyTaxAssessment) error {
	return insertRow(ctx, r.db, taxAssessmentTableName, a)
}

func (r *TaxAssessmentRepository) AssessmentByProperty(ctx context.Context, propertyID string) (*types.PropertyTaxAssessment, error) {
	return getRow[types.PropertyTaxAssessment](ctx, r.db,
		psql().Select(taxAssessmentColumns...).From(taxAssessmentTableName).Where(sq.Eq{"property_id": propertyID}),
		types.ErrTaxAssessmentNotFound,
	)
}

func (r *TaxAssessmentRepository) Update(ctx context.Context, a *types.PropertyTaxAssessment) error {
	return updateRow(ctx, r.db, taxAssessmentTableName, a, sq.Eq{"id": a.ID})
}

type SketchRepository struct {
	db querier
}

func (r *SketchRepository) SketchByProperty(ctx context.Context, propertyID string) (*types.PropertySketch, error) {
	return getRow[types.PropertySketch](ctx, r.db,
		psql().Select(sketchColumns...).From(sketchTableName).Where(sq.Eq{"property_id": propertyID}),
		types.ErrSketchNotFound,
	)
}

func (r *SketchRepository) Upsert(ctx context.Context, s *types.PropertySketch) error {
	query, args, err := psql().
		Insert(sketchTableName).
		SetMap(utils.StructToMap(s)).
		Suffix("ON CONFLICT (property_id) DO UPDATE SET request_id = EXCLUDED.request_id, doc_type = EXCLUDED.doc_type, term_days = EXCLUDED.term_days, approved_at = EXCLUDED.approved_at, approved_by_admin_id = EXCLUDED.approved_by_admin_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert sketch query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert sketch: %w", err)
	}

	return nil
}

type DebtRepository struct {
	db querier
}

func (r *DebtRepository) Create(ctx context.Context, d *types.PropertyDebt) error {
	return insertRow(ctx, r.db, debtTableName, d)
}

func (r *DebtRepository) Debt(ctx context.Context, propertyID string, year int) (*types.PropertyDebt, error) {
	return getRow[types.PropertyDebt](ctx, r.db,
		psql().Select(debtColumns...).From(debtTableName).Where(sq.Eq{"property_id": propertyID, "year": year}),
		types.ErrDebtNotFound,
	)
}

func (r *DebtRepository) DebtsByProperty(ctx context.Context, propertyID string) ([]*types.PropertyDebt, error) {
	return selectRows[types.PropertyDebt](ctx, r.db,
		psql().Select(debtColumns...).From(debtTableName).Where(sq.Eq{"property_id": propertyID}).OrderBy("year DESC"),
	)
}

func (r *DebtRepository) Update(ctx context.Context, d *types.PropertyDebt) error {
	return updateRow(ctx, r.db, debtTableName, d, sq.Eq{"id": d.ID})
}
