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
	fileTableName     = "app_files"
	fileLinkTableName = "file_links"
)

var (
	fileColumns     = utils.StructTagValues(types.AppFile{})
	fileLinkColumns = utils.StructTagValues(types.FileLink{})
)

type FileRepository struct {
	db querier
}

func (r *FileRepository) Create(ctx context.Context, file *types.AppFile) error {
	query, args, err := psql().
		Insert(fileTableName).
		SetMap(utils.StructToMap(file)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create file query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create file: %w", err)
	}

	return nil
}

func (r *FileRepository) File(ctx context.Context, id string) (*types.AppFile, error) {
	query, args, err := psql().
		Select(fileColumns...).
		From(fileTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file query: %w", err)
	}

	var file = new(types.AppFile)
	err = pgxscan.Get(ctx, r.db, file, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}

	return file, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(fileTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete file query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

type FileLinkRepository struct {
	db querier
}

func (r *FileLinkRepository) Create(ctx context.Context, link *types.FileLink) error {
	query, args, err := psql().
		Insert(fileLinkTableName).
		SetMap(utils.StructToMap(link)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create file link query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create file link: %w", err)
	}

	return nil
}

func (r *FileLinkRepository) Link(ctx context.Context, entityType types.EntityType, entityID string, tag types.FileTag) (*types.FileLink, error) {
	query, args, err := psql().
		Select(fileLinkColumns...).
		From(fileLinkTableName).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID, "tag": tag}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file link query: %w", err)
	}

	var link = new(types.FileLink)
	err = pgxscan.Get(ctx, r.db, link, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFileLinkNotFound
		}
		return nil, fmt.Errorf("failed to fetch file link: %w", err)
	}

	return link, nil
}

func (r *FileLinkRepository) Links(ctx context.Context, entityType types.EntityType, entityID string) ([]*types.FileLink, error) {
	query, args, err := psql().
		Select(fileLinkColumns...).
		From(fileLinkTableName).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("tag").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file links query: %w", err)
	}

	var links = make([]*types.FileLink, 0)
	err = pgxscan.Select(ctx, r.db, &links, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file links: %w", err)
	}

	return links, nil
}

func (r *FileLinkRepository) Delete(ctx context.Context, entityType types.EntityType, entityID string, tag types.FileTag) error {
	query, args, err := psql().
		Delete(fileLinkTableName).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID, "tag": tag}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete file link query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete file link: %w", err)
	}

	return nil
}
