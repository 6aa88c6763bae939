package store

import (
	"context"
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const (
	userTableName  = "users"
	adminTableName = "admins"
)

var (
	userColumns  = utils.StructTagValues(types.User{})
	adminColumns = utils.StructTagValues(types.Admin{})
)

type UserRepository struct {
	db querier
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	return r.userBy(ctx, sq.Eq{"id": userID})
}

func (r *UserRepository) UserByEgn(ctx context.Context, egn string) (*types.User, error) {
	return r.userBy(ctx, sq.Eq{"egn": egn})
}

func (r *UserRepository) userBy(ctx context.Context, pred sq.Eq) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *types.User) error {
	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		Suffix("ON CONFLICT (egn) DO UPDATE SET full_name = EXCLUDED.full_name, gender = EXCLUDED.gender, dob = EXCLUDED.dob, email = EXCLUDED.email, phone = EXCLUDED.phone, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert user query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

type AdminRepository struct {
	db querier
}

func (r *AdminRepository) AdminByUsername(ctx context.Context, username string) (*types.Admin, error) {
	query, args, err := psql().
		Select(adminColumns...).
		From(adminTableName).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin query: %w", err)
	}

	var admin types.Admin
	err = pgxscan.Get(ctx, r.db, &admin, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}

	return &admin, nil
}

func (r *AdminRepository) Upsert(ctx context.Context, admin *types.Admin) error {
	query, args, err := psql().
		Insert(adminTableName).
		SetMap(utils.StructToMap(admin)).
		Suffix("ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, is_active = EXCLUDED.is_active").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert admin query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}

	return nil
}
