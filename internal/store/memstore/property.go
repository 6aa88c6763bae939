package memstore

import (
	"context"
	"sort"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type properties struct{ v view }

func (r properties) Create(_ context.Context, p *types.Property) error {
	r.v.with(func(d *dataset) {
		d.properties.put(p.ID, *p)
	})
	return nil
}

func (r properties) Property(_ context.Context, id string) (*types.Property, error) {
	var out *types.Property
	r.v.with(func(d *dataset) {
		if row, ok := d.properties.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrPropertyNotFound
	}
	return out, nil
}

func (r properties) PropertiesByOwner(_ context.Context, ownerID string, activeOnly bool) ([]*types.Property, error) {
	out := make([]*types.Property, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.properties.newest(func(p types.Property) bool {
			return p.OwnerUserID == ownerID && (!activeOnly || p.Active)
		}) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

func (r properties) Update(_ context.Context, p *types.Property) error {
	r.v.with(func(d *dataset) {
		if existing, ok := d.properties.get(p.ID); ok {
			row := *p
			row.CreatedAt = existing.CreatedAt
			d.properties.put(p.ID, row)
		}
	})
	return nil
}

type taxAssessments struct{ v view }

func (r taxAssessments) Create(_ context.Context, a *types.PropertyTaxAssessment) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, dup := d.taxAssessments.first(func(x types.PropertyTaxAssessment) bool {
			return x.PropertyID == a.PropertyID
		}); dup {
			err = types.ErrDuplicateKey
			return
		}
		d.taxAssessments.put(a.ID, *a)
	})
	return err
}

func (r taxAssessments) AssessmentByProperty(_ context.Context, propertyID string) (*types.PropertyTaxAssessment, error) {
	var out *types.PropertyTaxAssessment
	r.v.with(func(d *dataset) {
		if row, ok := d.taxAssessments.first(func(x types.PropertyTaxAssessment) bool {
			return x.PropertyID == propertyID
		}); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrTaxAssessmentNotFound
	}
	return out, nil
}

func (r taxAssessments) Update(_ context.Context, a *types.PropertyTaxAssessment) error {
	r.v.with(func(d *dataset) {
		if existing, ok := d.taxAssessments.get(a.ID); ok {
			row := *a
			row.CreatedAt = existing.CreatedAt
			d.taxAssessments.put(a.ID, row)
		}
	})
	return nil
}

type sketches struct{ v view }

func (r sketches) SketchByProperty(_ context.Context, propertyID string) (*types.PropertySketch, error) {
	var out *types.PropertySketch
	r.v.with(func(d *dataset) {
		if row, ok := d.sketches.first(func(x types.PropertySketch) bool {
			return x.PropertyID == propertyID
		}); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrSketchNotFound
	}
	return out, nil
}

func (r sketches) Upsert(_ context.Context, s *types.PropertySketch) error {
	r.v.with(func(d *dataset) {
		row := *s
		if existing, ok := d.sketches.first(func(x types.PropertySketch) bool {
			return x.PropertyID == s.PropertyID
		}); ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}
		d.sketches.put(row.ID, row)
	})
	return nil
}

type debts struct{ v view }

func (r debts) Create(_ context.Context, debt *types.PropertyDebt) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, dup := d.debts.first(func(x types.PropertyDebt) bool {
			return x.PropertyID == debt.PropertyID && x.Year == debt.Year
		}); dup {
			err = types.ErrDuplicateKey
			return
		}
		d.debts.put(debt.ID, *debt)
	})
	return err
}

func (r debts) Debt(_ context.Context, propertyID string, year int) (*types.PropertyDebt, error) {
	var out *types.PropertyDebt
	r.v.with(func(d *dataset) {
		if row, ok := d.debts.first(func(x types.PropertyDebt) bool {
			return x.PropertyID == propertyID && x.Year == year
		}); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrDebtNotFound
	}
	return out, nil
}

func (r debts) DebtsByProperty(_ context.Context, propertyID string) ([]*types.PropertyDebt, error) {
	out := make([]*types.PropertyDebt, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.debts.newest(func(x types.PropertyDebt) bool { return x.PropertyID == propertyID }) {
			out = append(out, ptr(row))
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (r debts) Update(_ context.Context, debt *types.PropertyDebt) error {
	r.v.with(func(d *dataset) {
		if existing, ok := d.debts.get(debt.ID); ok {
			row := *debt
			row.CreatedAt = existing.CreatedAt
			d.debts.put(debt.ID, row)
		}
	})
	return nil
}
