package memstore

import (
	"context"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

func cloneDocument(doc types.Document) types.Document {
	doc.Categories = cloneStrings(doc.Categories)
	return doc
}

type documents struct{ v view }

func (r documents) Create(_ context.Context, doc *types.Document) error {
	var err error
	r.v.with(func(d *dataset) {
		if _, ok := d.documents.get(doc.ID); ok {
			err = types.ErrDuplicateKey
			return
		}
		d.documents.put(doc.ID, cloneDocument(*doc))
	})
	return err
}

func (r documents) Document(_ context.Context, id string) (*types.Document, error) {
	var out *types.Document
	r.v.with(func(d *dataset) {
		if row, ok := d.documents.get(id); ok {
			out = ptr(cloneDocument(row))
		}
	})
	if out == nil {
		return nil, types.ErrDocumentNotFound
	}
	return out, nil
}

func (r documents) DocumentByUserAndType(_ context.Context, userID string, docType types.DocumentType) (*types.Document, error) {
	var out *types.Document
	r.v.with(func(d *dataset) {
		if row, ok := d.documents.first(func(x types.Document) bool {
			return x.UserID == userID && x.Type == docType
		}); ok {
			out = ptr(cloneDocument(row))
		}
	})
	if out == nil {
		return nil, types.ErrDocumentNotFound
	}
	return out, nil
}

func (r documents) DocumentsByUser(_ context.Context, userID string) ([]*types.Document, error) {
	out := make([]*types.Document, 0)
	r.v.with(func(d *dataset) {
		for _, row := range d.documents.newest(func(x types.Document) bool { return x.UserID == userID }) {
			out = append(out, ptr(cloneDocument(row)))
		}
	})
	return out, nil
}

func (r documents) Delete(_ context.Context, id string) error {
	r.v.with(func(d *dataset) {
		d.documents.del(id)
	})
	return nil
}
