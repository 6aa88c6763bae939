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
	vehicleTableName    = "transport_vehicles"
	vehicleTaxTableName = "transport_vehicle_tax_payments"
	vignetteTableName   = "transport_vignettes"
	fineTableName       = "transport_fines"
)

var (
	vehicleColumns    = utils.StructTagValues(types.TransportVehicle{})
	vehicleTaxColumns = utils.StructTagValues(types.VehicleTaxPayment{})
	vignetteColumns   = utils.StructTagValues(types.TransportVignette{})
	fineColumns       = utils.StructTagValues(types.TransportFine{})
)

type VehicleRepository struct {
	db querier
}

func (r *VehicleRepository) Create(ctx context.Context, v *types.TransportVehicle) error {
	return insertRow(ctx, r.db, vehicleTableName, v)
}

func (r *VehicleRepository) Vehicle(ctx context.Context, id string) (*types.TransportVehicle, error) {
	return getRow[types.TransportVehicle](ctx, r.db,
		psql().Select(vehicleColumns...).From(vehicleTableName).Where(sq.Eq{"id": id}),
		types.ErrVehicleNotFound,
	)
}

func (r *VehicleRepository) VehiclesByUser(ctx context.Context, userID string) ([]*types.TransportVehicle, error) {
	return selectRows[types.TransportVehicle](ctx, r.db,
		psql().Select(vehicleColumns...).From(vehicleTableName).Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"),
	)
}

func (r *VehicleRepository) ExistsByRegNumber(ctx context.Context, regNumber string) (bool, error) {
	query, args, err := psql().
		Select().
		Column(sq.Expr("EXISTS (?)", psql().Select("1").From(vehicleTableName).Where("lower(reg_number) = lower(?)", regNumber))).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate vehicle exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check vehicle reg number: %w", err)
	}

	return exists, nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *types.TransportVehicle) error {
	return updateRow(ctx, r.db, vehicleTableName, v, sq.Eq{"id": v.ID})
}

type VehicleTaxRepository struct {
	db querier
}

func (r *VehicleTaxRepository) Upsert(ctx context.Context, p *types.VehicleTaxPayment) error {
	query, args, err := psql().
		Insert(vehicleTaxTableName).
		SetMap(utils.StructToMap(p)).
		Suffix("ON CONFLICT (vehicle_id, tax_year) DO UPDATE SET amount = EXCLUDED.amount, paid_at = EXCLUDED.paid_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert vehicle tax query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle tax payment: %w", err)
	}

	return nil
}

func (r *VehicleTaxRepository) PaymentsByVehicle(ctx context.Context, vehicleID string) ([]*types.VehicleTaxPayment, error) {
	return selectRows[types.VehicleTaxPayment](ctx, r.db,
		psql().Select(vehicleTaxColumns...).From(vehicleTaxTableName).Where(sq.Eq{"vehicle_id": vehicleID}).OrderBy("tax_year DESC"),
	)
}

type VignetteRepository struct {
	db querier
}

func (r *VignetteRepository) Create(ctx context.Context, v *types.TransportVignette) error {
	return insertRow(ctx, r.db, vignetteTableName, v)
}

func (r *VignetteRepository) ActiveForVehicle(ctx context.Context, vehicleID string, day time.Time) (*types.TransportVignette, error) {
	return getRow[types.TransportVignette](ctx, r.db,
		psql().Select(vignetteColumns...).From(vignetteTableName).
			Where(sq.Eq{"vehicle_id": vehicleID}).
			Where(sq.LtOrEq{"valid_from": day}).
			Where(sq.GtOrEq{"valid_until": day}).
			OrderBy("valid_until DESC"),
		nil,
	)
}

func (r *VignetteRepository) VignettesByUser(ctx context.Context, userID string) ([]*types.TransportVignette, error) {
	return selectRows[types.TransportVignette](ctx, r.db,
		psql().Select(vignetteColumns...).From(vignetteTableName).Where(sq.Eq{"user_id": userID}).OrderBy("valid_from DESC"),
	)
}

type FineRepository struct {
	db querier
}

func (r *FineRepository) Create(ctx context.Context, f *types.TransportFine) error {
	return insertRow(ctx, r.db, fineTableName, f)
}

func (r *FineRepository) Fine(ctx context.Context, id string) (*types.TransportFine, error) {
	return getRow[types.TransportFine](ctx, r.db,
		psql().Select(fineColumns...).From(fineTableName).Where(sq.Eq{"id": id}),
		types.ErrFineNotFound,
	)
}

func (r *FineRepository) FinesByEgn(ctx context.Context, egn string) ([]*types.TransportFine, error) {
	return selectRows[types.TransportFine](ctx, r.db,
		psql().Select(fineColumns...).From(fineTableName).Where(sq.Eq{"egn": egn}).OrderBy("issued_at DESC"),
	)
}

func (r *FineRepository) Fines(ctx context.Context) ([]*types.TransportFine, error) {
	return selectRows[types.TransportFine](ctx, r.db,
		psql().Select(fineColumns...).From(fineTableName).OrderBy("issued_at DESC"),
	)
}

func (r *FineRepository) Update(ctx context.Context, f *types.TransportFine) error {
	return updateRow(ctx, r.db, fineTableName, f, sq.Eq{"id": f.ID})
}
