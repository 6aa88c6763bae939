package memstore

import (
	"context"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

type files struct{ v view }

func (r files) Create(_ context.Context, f *types.AppFile) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, ok := d.files.get(f.ID); ok {
			err = types.ErrDuplicateKey
			return
		}
		d.files.put(f.ID, *f)
	})
	return err
}

func (r files) File(_ context.Context, id string) (*types.AppFile, error) {
	var out *types.AppFile
	r.v.with(func(d *dataset) {
		if row, ok := d.files.get(id); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrFileNotFound
	}
	return out, nil
}

func (r files) Delete(_ context.Context, id string) error {
	r.v.with(func(d *dataset) {
		d.files.del(id)
	})
	return nil
}

type fileLinks struct{ v view }

func linkMatches(entityType types.EntityType, entityID string, tag types.FileTag) func(types.FileLink) bool {
	return func(l types.FileLink) bool {
		return l.EntityType == entityType && l.EntityID == entityID && l.Tag == tag
	}
}

func (r fileLinks) Create(_ context.Context, link *types.FileLink) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, exists := d.fileLinks.first(linkMatches(link.EntityType, link.EntityID, link.Tag)); exists {
			err = types.ErrDuplicateKey
			return
		}
		d.fileLinks.put(link.ID, *link)
	})
	return err
}

func (r fileLinks) Link(_ context.Context, entityType types.EntityType, entityID string, tag types.FileTag) (*types.FileLink, error) {
	var out *types.FileLink
	r.v.with(func(d *dataset) {
		if row, ok := d.fileLinks.first(linkMatches(entityType, entityID, tag)); ok {
			out = ptr(row)
		}
	})
	if out == nil {
		return nil, types.ErrFileLinkNotFound
	}
	return out, nil
}

func (r fileLinks) Links(_ context.Context, entityType types.EntityType, entityID string) ([]*types.FileLink, error) {
	out := make([]*types.FileLink, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.fileLinks.newest(func(l types.FileLink) bool {
			return l.EntityType == entityType && l.EntityID == entityID
		}) {
			out = append(out, ptr(row))
		}
	})
	return out, nil
}

func (r fileLinks) Delete(_ context.Context, entityType types.EntityType, entityID string, tag types.FileTag) error {
	r.v.with(func(d *dataset) {
		for _, row := range d.fileLinks.newest(linkMatches(entityType, entityID, tag)) {
			d.fileLinks.del(row.ID)
		}
	})
	return nil
}
