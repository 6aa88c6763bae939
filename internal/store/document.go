package store

import (
	"context"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const documentTableName = "documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	db querier
}

func (r *DocumentRepository) Create(ctx context.Context, doc *types.Document) error {
	return insertRow(ctx, r.db, documentTableName, doc)
}

func (r *DocumentRepository) Document(ctx context.Context, id string) (*types.Document, error) {
	return getRow[types.Document](ctx, r.db,
		psql().Select(documentColumns...).From(documentTableName).Where(sq.Eq{"id": id}),
		types.ErrDocumentNotFound,
	)
}

func (r *DocumentRepository) DocumentByUserAndType(ctx context.Context, userID string, docType types.DocumentType) (*types.Document, error) {
	return getRow[types.Document](ctx, r.db,
		psql().Select(documentColumns...).From(documentTableName).Where(sq.Eq{"user_id": userID, "type": docType}),
		types.ErrDocumentNotFound,
	)
}

func (r *DocumentRepository) DocumentsByUser(ctx context.Context, userID string) ([]*types.Document, error) {
	return selectRows[types.Document](ctx, r.db,
		psql().Select(documentColumns...).From(documentTableName).Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"),
	)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return deleteRows(ctx, r.db, documentTableName, sq.Eq{"id": id})
}
