package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const requestTableName = "requests"

var requestColumns = utils.StructTagValues(types.Request{})

type RequestRepository struct {
	db querier
}

func (r *RequestRepository) Create(ctx context.Context, req *types.Request) error {
	query, args, err := psql().
		Insert(requestTableName).
		SetMap(utils.StructToMap(req)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create request query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

func (r *RequestRepository) Request(ctx context.Context, id string) (*types.Request, error) {
	return r.request(ctx, id, "")
}

func (r *RequestRepository) RequestForUpdate(ctx context.Context, id string) (*types.Request, error) {
	return r.request(ctx, id, "FOR UPDATE")
}

func (r *RequestRepository) request(ctx context.Context, id, suffix string) (*types.Request, error) {
	builder := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(sq.Eq{"id": id}).
		Limit(1)
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var req = new(types.Request)
	err = pgxscan.Get(ctx, r.db, req, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch request: %w", err)
	}

	return req, nil
}

func (r *RequestRepository) Requests(ctx context.Context, filter RequestFilter) ([]*types.Request, error) {
	builder := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(sq.Eq{"domain": filter.Domain}).
		OrderBy("created_at DESC")
	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.ExcludeStatus != "" {
		builder = builder.Where(sq.NotEq{"status": filter.ExcludeStatus})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate requests query: %w", err)
	}

	var requests = make([]*types.Request, 0)
	err = pgxscan.Select(ctx, r.db, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, nil
}

func (r *RequestRepository) ExistsPending(ctx context.Context, q PendingQuery) (bool, error) {
	builder := psql().
		Select("1").
		From(requestTableName).
		Where(sq.Eq{
			"domain": q.Domain,
			"kind":   q.Kind,
			"status": types.RequestStatusPending,
		})
	if q.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": q.UserID})
	}
	if q.TargetID != "" {
		builder = builder.Where(sq.Eq{"target_id": q.TargetID})
	}
	if q.RegNumber != "" {
		builder = builder.Where("lower(reg_number) = lower(?)", q.RegNumber)
	}
	if q.DocumentType != "" {
		builder = builder.Where(sq.Eq{"document_type": q.DocumentType})
	}

	query, args, err := psql().
		Select().
		Column(sq.Expr("EXISTS (?)", builder)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate pending exists query: %w", err)
	}

	var exists bool
	err = r.db.QueryRow(ctx, query, args...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending requests: %w", err)
	}

	return exists, nil
}

func (r *RequestRepository) Decide(ctx context.Context, d Decision) (bool, error) {
	query, args, err := psql().
		Update(requestTableName).
		Set("status", d.Status).
		Set("admin_note", d.Note).
		Set("decided_at", d.At).
		Set("decided_by_admin_id", d.AdminID).
		Set("updated_at", d.At).
		Where(sq.Eq{"id": d.RequestID, "status": types.RequestStatusPending}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate decide request query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to decide request: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *RequestRepository) SetTarget(ctx context.Context, id string, targetID *string, at time.Time) error {
	query, args, err := psql().
		Update(requestTableName).
		Set("target_id", targetID).
		Set("updated_at", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set request target query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set request target: %w", err)
	}

	return nil
}
