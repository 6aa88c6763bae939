// Package reports records problem reports filed by citizens and their
// review by administrators.
package reports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/metrics"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	metricsDomain     = "REPORT"
	minDescriptionLen = 10
)

type Service struct {
	store   store.Store
	logger  *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(st store.Store, logger *logrus.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:   st,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*types.ProblemReport, error) {
	category := strings.TrimSpace(in.Category)
	description := strings.TrimSpace(in.Description)

	if category == "" {
		return nil, apperr.Validation("CATEGORY_REQUIRED")
	}
	if !slices.Contains(types.ReportCategories, category) {
		return nil, apperr.Validation("CATEGORY_INVALID")
	}
	if utf8.RuneCountInString(description) < minDescriptionLen {
		return nil, apperr.Validation("DESCRIPTION_MIN_10")
	}

	user, err := s.store.Users().User(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, apperr.NotFound("USER_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := s.now()
	r := &types.ProblemReport{
		ID:           utils.NanoID(),
		UserID:       user.ID,
		UserEgn:      user.Egn,
		UserFullName: user.FullName,
		Category:     category,
		Description:  description,
		Status:       types.ReportStatusInReview,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Reports().Create(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.metrics.IncrementSubmitted(metricsDomain, category)
	s.logger.WithFields(logrus.Fields{
		"report_id": r.ID,
		"user_id":   userID,
		"category":  category,
	}).Info("problem report filed")

	return r, nil
}

func (s *Service) MyReports(ctx context.Context, userID string) ([]*types.ProblemReport, error) {
	rs, err := s.store.Reports().Reports(ctx, store.ReportFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return rs, nil
}

func (s *Service) MyReport(ctx context.Context, userID, reportID string) (*types.ProblemReport, error) {
	r, err := s.AdminGet(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, apperr.NotFound("REPORT_NOT_FOUND")
	}
	return r, nil
}

// ParseStatus accepts a report status in any case. Blank and ALL mean no
// filter.
func ParseStatus(raw string) (types.ReportStatus, error) {
	switch st := types.ReportStatus(strings.ToUpper(strings.TrimSpace(raw))); st {
	case "", "ALL":
		return "", nil
	case types.ReportStatusInReview, types.ReportStatusResolved, types.ReportStatusRejected:
		return st, nil
	}
	return "", apperr.Validation("STATUS_INVALID")
}

func (s *Service) AdminList(ctx context.Context, status string) ([]*types.ProblemReport, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	rs, err := s.store.Reports().Reports(ctx, store.ReportFilter{Status: st})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return rs, nil
}

func (s *Service) AdminGet(ctx context.Context, reportID string) (*types.ProblemReport, error) {
	r, err := s.store.Reports().Report(ctx, strings.TrimSpace(reportID))
	if err != nil {
		if errors.Is(err, types.ErrReportNotFound) {
			return nil, apperr.NotFound("REPORT_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return r, nil
}

func (s *Service) Resolve(ctx context.Context, reportID, adminID, note string) (*types.ProblemReport, error) {
	return s.decide(ctx, reportID, types.ReportStatusResolved, adminID, note)
}

func (s *Service) Reject(ctx context.Context, reportID, adminID, note string) (*types.ProblemReport, error) {
	return s.decide(ctx, reportID, types.ReportStatusRejected, adminID, note)
}

func (s *Service) decide(ctx context.Context, reportID string, status types.ReportStatus, adminID, note string) (*types.ProblemReport, error) {
	var decided *types.ProblemReport

	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		r, err := tx.Reports().Report(ctx, strings.TrimSpace(reportID))
		if err != nil {
			if errors.Is(err, types.ErrReportNotFound) {
				return apperr.NotFound("REPORT_NOT_FOUND")
			}
			return fmt.Errorf("failed to load report: %w", err)
		}

		changed, err := tx.Reports().Decide(ctx, r.ID, status, adminID, strings.TrimSpace(note), s.now())
		if err != nil {
			return fmt.Errorf("failed to decide report: %w", err)
		}
		if !changed {
			return apperr.Conflict("REPORT_ALREADY_DECIDED")
		}

		decided, err = tx.Reports().Report(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to reload report: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperr.HasCode(err, "REPORT_ALREADY_DECIDED") {
			s.metrics.IncrementConflict(metricsDomain, "REPORT_ALREADY_DECIDED")
		}
		return nil, err
	}

	s.metrics.IncrementDecided(metricsDomain, decided.Category, string(status))
	s.logger.WithFields(logrus.Fields{
		"report_id": decided.ID,
		"status":    status,
		"admin_id":  adminID,
	}).Info("problem report decided")

	return decided, nil
}
