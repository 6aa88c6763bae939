package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type vehicles struct{ v view }

func (r vehicles) Create(_ context.Context, veh *types.TransportVehicle) error {
	r.v.with(func(d *dataset) {
		d.vehicles.put(veh.ID, *veh)
	})
	return nil
}

func (r vehicles) Vehicle(_ context.Context, id string) (*types.TransportVehicle, error) {
	var out *types.TransportVehicle
	r.v.with(func(d *dataset) {
		if row, ok := d.vehicles.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrVehicleNotFound
	}
	return out, nil
}

func (r vehicles) VehiclesByUser(_ context.Context, userID string) ([]*types.TransportVehicle, error) {
	out := make([]*types.TransportVehicle, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.vehicles.newest(func(x types.TransportVehicle) bool { return x.UserID == userID }) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

func (r vehicles) ExistsByRegNumber(_ context.Context, regNumber string) (bool, error) {
	var found bool
	r.v.with(func(d *dataset) {
		_, found = d.vehicles.first(func(x types.TransportVehicle) bool {
			return strings.EqualFold(x.RegNumber, regNumber)
		})
	})
	return found, nil
}

func (r vehicles) Update(_ context.Context, veh *types.TransportVehicle) error {
	r.v.with(func(d *dataset) {
		if existing, ok := d.vehicles.get(veh.ID); ok {
			row := *veh
			row.CreatedAt = existing.CreatedAt
			d.vehicles.put(veh.ID, row)
		}
	})
	return nil
}

type vehicleTaxes struct{ v view }

func (r vehicleTaxes) Upsert(_ context.Context, p *types.VehicleTaxPayment) error {
	r.v.with(func(d *dataset) {
		row := *p
		if existing, ok := d.vehicleTaxes.first(func(x types.VehicleTaxPayment) bool {
			return x.VehicleID == p.VehicleID && x.TaxYear == p.TaxYear
		}); ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}
		d.vehicleTaxes.put(row.ID, row)
	})
	return nil
}

func (r vehicleTaxes) PaymentsByVehicle(_ context.Context, vehicleID string) ([]*types.VehicleTaxPayment, error) {
	out := make([]*types.VehicleTaxPayment, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.vehicleTaxes.newest(func(x types.VehicleTaxPayment) bool { return x.VehicleID == vehicleID }) {
			out = append(out, ptr(row))
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].TaxYear > out[j].TaxYear })
	return out, nil
}

type vignettes struct{ v view }

func (r vignettes) Create(_ context.Context, vig *types.TransportVignette) error {
	r.v.with(func(d *dataset) {
		d.vignettes.put(vig.ID, *vig)
	})
	return nil
}

func (r vignettes) ActiveForVehicle(_ context.Context, vehicleID string, day time.Time) (*types.TransportVignette, error) {
	var out *types.TransportVignette
	r.v.with(func(d *dataset) {
		if row, ok := d.vignettes.first(func(x types.TransportVignette) bool {
			return x.VehicleID == vehicleID && !day.Before(x.ValidFrom) && !day.After(x.ValidUntil)
		}); ok {
			out = ptr(row)
		}
	})
	return out, nil
}

func (r vignettes) VignettesByUser(_ context.Context, userID string) ([]*types.TransportVignette, error) {
	out := make([]*types.TransportVignette, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.vignettes.newest(func(x types.TransportVignette) bool { return x.UserID == userID }) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

type fines struct{ v view }

func (r fines) Create(_ context.Context, f *types.TransportFine) error {
	r.v.with(func(d *dataset) {
		d.fines.put(f.ID, *f)
	})
	return nil
}

func (r fines) Fine(_ context.Context, id string) (*types.TransportFine, error) {
	var out *types.TransportFine
	r.v.with(func(d *dataset) {
		if row, ok := d.fines.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrFineNotFound
	}
	return out, nil
}

func (r fines) FinesByEgn(_ context.Context, egn string) ([]*types.TransportFine, error) {
	out := make([]*types.TransportFine, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.fines.newest(func(x types.TransportFine) bool { return x.Egn == egn }) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

func (r fines) Fines(_ context.Context) ([]*types.TransportFine, error) {
	out := make([]*types.TransportFine, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.fines.newest(nil) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

func (r fines) Update(_ context.Context, f *types.TransportFine) error {
	r.v.with(func(d *dataset) {
		if existing, ok := d.fines.get(f.ID); ok {
			row := *f
			row.CreatedAt = existing.CreatedAt
			d.fines.put(f.ID, row)
		}
	})
	return nil
}
