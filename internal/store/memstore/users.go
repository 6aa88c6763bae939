package memstore

import (
	"context"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type users struct{ v view }

func (r users) Create(_ context.Context, u *types.User) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, dup := d.users.first(func(x types.User) bool {
			return x.ID == u.ID || x.Egn == u.Egn || (u.Email != "" && x.Email == u.Email)
		}); dup {
			err = types.ErrDuplicateKey
			return
		}
		d.users.put(u.ID, *u)
	})
	return err
}

func (r users) User(_ context.Context, id string) (*types.User, error) {
	var out *types.User
	r.v.with(func(d *dataset) {
		if row, ok := d.users.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrUserNotFound
	}
	return out, nil
}

func (r users) UserByEgn(_ context.Context, egn string) (*types.User, error) {
	var out *types.User
	r.v.with(func(d *dataset) {
		if row, ok := d.users.first(func(x types.User) bool { return x.Egn == egn }); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrUserNotFound
	}
	return out, nil
}

func (r users) Upsert(_ context.Context, u *types.User) error {
	r.v.with(func(d *dataset) {
		row := *u
		if existing, ok := d.users.first(func(x types.User) bool { return x.Egn == u.Egn }); ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}
		d.users.put(row.ID, row)
	})
	return nil
}

type admins struct{ v view }

func (r admins) AdminByUsername(_ context.Context, username string) (*types.Admin, error) {
	var out *types.Admin
	r.v.with(func(d *dataset) {
		if row, ok := d.admins.first(func(a types.Admin) bool { return a.Username == username }); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrAdminNotFound
	}
	return out, nil
}

func (r admins) Upsert(_ context.Context, a *types.Admin) error {
	r.v.with(func(d *dataset) {
		row := *a
		if existing, ok := d.admins.first(func(x types.Admin) bool { return x.Username == a.Username }); ok {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}
		d.admins.put(row.ID, row)
	})
	return nil
}
