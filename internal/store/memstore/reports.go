package memstore

import (
	"context"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type reports struct{ v view }

func (r reports) Create(_ context.Context, rep *types.ProblemReport) error {
	r.v.with(func(d *dataset) {
		d.reports.put(rep.ID, *rep)
	})
	return nil
}

func (r reports) Report(_ context.Context, id string) (*types.ProblemReport, error) {
	var out *types.ProblemReport
	r.v.with(func(d *dataset) {
		if row, ok := d.reports.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrReportNotFound
	}
	return out, nil
}

func (r reports) Reports(_ context.Context, f store.ReportFilter) ([]*types.ProblemReport, error) {
	out := make([]*types.ProblemReport, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.reports.newest(func(x types.ProblemReport) bool {
			return (f.UserID == "" || x.UserID == f.UserID) && (f.Status == "" || x.Status == f.Status)
		}) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

func (r reports) Decide(_ context.Context, id string, status types.ReportStatus, adminID, note string, at time.Time) (bool, error) {
	var changed bool
	r.v.with(func(d *dataset) {
		row, ok := d.reports.get(id)
		if !ok || row.Status != types.ReportStatusInReview {
			return
		}
		row.Status = status
		row.AdminNote = utils.NonBlankPtr(note)
		row.DecidedAt = ptr(at)
		row.DecidedByAdminID = ptr(adminID)
		row.UpdatedAt = at
		d.reports.put(id, row)
		changed = true
	})
	return changed, nil
}
