package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

func cloneRequest(r types.Request) types.Request {
	r.Payload = cloneBytes(r.Payload)
	return r
}

type requests struct{ v view }

func (r requests) Create(_ context.Context, req *types.Request) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, ok := d.requests.get(req.ID); ok {
			err = types.ErrDuplicateKey
			return
		}
		d.requests.put(req.ID, cloneRequest(*req))
	})
	return err
}

func (r requests) Request(_ context.Context, id string) (*types.Request, error) {
	var out *types.Request
	r.v.with(func(d *dataset) {
		if row, ok := d.requests.get(id); ok {
			out = ptr(cloneRequest(row))
		}
	})
	if out == nil {
		return nil, types.ErrRequestNotFound
	}
	return out, nil
}

// RequestForUpdate needs no row lock: transactions already run one at a
// time.
func (r requests) RequestForUpdate(ctx context.Context, id string) (*types.Request, error) {
	return r.Request(ctx, id)
}

func (r requests) Requests(_ context.Context, f store.RequestFilter) ([]*types.Request, error) {
	out := make([]*types.Request, 0)
	r.v.with(func(d *dataset) {
		rows := d.requests.newest(func(req types.Request) bool {
			return req.Domain == f.Domain &&
				(f.UserID == "" || req.UserID == f.UserID) &&
				(f.Status == "" || req.Status == f.Status) &&
				(f.ExcludeStatus == "" || req.Status != f.ExcludeStatus)
		})
		out = make([]*types.Request, 0, len(rows))
		for _, row := range rows {
			out = append(out, ptr(cloneRequest(row)))
		}
	})
	return out, nil
}

func (r requests) ExistsPending(_ context.Context, q store.PendingQuery) (bool, error) {
	var found bool
	r.v.with(func(d *dataset) {
		_, found = d.requests.first(func(req types.Request) bool {
			if req.Domain != q.Domain || req.Kind != q.Kind || req.Status != types.RequestStatusPending {
				return false
			}
			if q.UserID != "" && req.UserID != q.UserID {
				return false
			}
			if q.TargetID != "" && (req.TargetID == nil || *req.TargetID != q.TargetID) {
				return false
			}
			if q.RegNumber != "" && (req.RegNumber == nil || !strings.EqualFold(*req.RegNumber, q.RegNumber)) {
				return false
			}
			if q.DocumentType != "" && (req.DocumentType == nil || *req.DocumentType != q.DocumentType) {
				return false
			}
			return true
		})
	})
	return found, nil
}

func (r requests) Decide(_ context.Context, dec store.Decision) (bool, error) {
	var changed bool
	r.v.with(func(d *dataset) {
		row, ok := d.requests.get(dec.RequestID)
		if !ok || row.Status != types.RequestStatusPending {
			return
		}
		row.Status = dec.Status
		row.AdminNote = dec.Note
		row.DecidedAt = ptr(dec.At)
		row.DecidedByAdminID = ptr(dec.AdminID)
		row.UpdatedAt = dec.At
		d.requests.put(row.ID, row)
		changed = true
	})
	return changed, nil
}

func (r requests) SetTarget(_ context.Context, id string, targetID *string, at time.Time) error {
	r.v.with(func(d *dataset) {
		row, ok := d.requests.get(id)
		if !ok {
			return
		}
		if targetID != nil {
			row.TargetID = ptr(*targetID)
		} else {
			row.TargetID = nil
		}
		row.UpdatedAt = at
		d.requests.put(id, row)
	})
	return nil
}
