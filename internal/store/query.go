package store

import (
	"context"
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

func insertRow(ctx context.Context, db querier, table string, row any) error {
	query, args, err := psql().
		Insert(table).
		SetMap(utils.StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert into %s: %w", table, err)
	}

	if _, err := db.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return nil
}

func updateRow(ctx context.Context, db querier, table string, row any, where sq.Eq) error {
	query, args, err := psql().
		Update(table).
		SetMap(utils.StructToMap(row, "id", "created_at")).
		Where(where).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update of %s: %w", table, err)
	}

	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}

	return nil
}

func deleteRows(ctx context.Context, db querier, table string, where sq.Eq) error {
	query, args, err := psql().
		Delete(table).
		Where(where).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete from %s: %w", table, err)
	}

	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return nil
}

// getRow scans the first row of builder into a new T, returning notFound
// when there is none.
func getRow[T any](ctx context.Context, db querier, builder sq.SelectBuilder, notFound error) (*T, error) {
	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	var row = new(T)
	err = pgxscan.Get(ctx, db, row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to fetch row: %w", err)
	}

	return row, nil
}

func selectRows[T any](ctx context.Context, db querier, builder sq.SelectBuilder) ([]*T, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	var rows = make([]*T, 0)
	err = pgxscan.Select(ctx, db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rows: %w", err)
	}

	return rows, nil
}
