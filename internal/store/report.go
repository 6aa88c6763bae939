package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const reportTableName = "problem_reports"

var reportColumns = utils.StructTagValues(types.ProblemReport{})

type ReportRepository struct {
	db querier
}

func (r *ReportRepository) Create(ctx context.Context, report *types.ProblemReport) error {
	return insertRow(ctx, r.db, reportTableName, report)
}

func (r *ReportRepository) Report(ctx context.Context, id string) (*types.ProblemReport, error) {
	return getRow[types.ProblemReport](ctx, r.db,
		psql().Select(reportColumns...).From(reportTableName).Where(sq.Eq{"id": id}),
		types.ErrReportNotFound,
	)
}

func (r *ReportRepository) Reports(ctx context.Context, filter ReportFilter) ([]*types.ProblemReport, error) {
	builder := psql().Select(reportColumns...).From(reportTableName).OrderBy("created_at DESC")
	if filter.UserID != "" {
		builder = builder.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	return selectRows[types.ProblemReport](ctx, r.db, builder)
}

func (r *ReportRepository) Decide(ctx context.Context, id string, status types.ReportStatus, adminID, note string, at time.Time) (bool, error) {
	query, args, err := psql().
		Update(reportTableName).
		Set("status", status).
		Set("admin_note", utils.NonBlankPtr(note)).
		Set("decided_at", at).
		Set("decided_by_admin_id", adminID).
		Set("updated_at", at).
		Where(sq.Eq{"id": id, "status": types.ReportStatusInReview}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate decide report query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to decide report: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
