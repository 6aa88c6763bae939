package property

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

// DebtsStartYear is the first year debts are charged for.
const DebtsStartYear = 2026

// Debts returns the property's yearly debts, newest year first, creating
// any missing year up to the current one from the tax assessment amounts.
func (s *Service) Debts(ctx context.Context, userID, propertyID string) ([]*types.PropertyDebt, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}

	var out []*types.PropertyDebt
	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		tax, err := tx.TaxAssessments().AssessmentByProperty(ctx, prop.ID)
		if err != nil {
			if errors.Is(err, types.ErrTaxAssessmentNotFound) {
				return apperr.Validation("TAX_ASSESSMENT_REQUIRED_FOR_DEBTS")
			}
			return fmt.Errorf("failed to load tax assessment: %w", err)
		}

		now := s.engine.Now()
		for year := DebtsStartYear; year <= now.Year(); year++ {
			_, err := tx.Debts().Debt(ctx, prop.ID, year)
			if err == nil {
				continue
			}
			if !errors.Is(err, types.ErrDebtNotFound) {
				return fmt.Errorf("failed to load debt for %d: %w", year, err)
			}

			debt := &types.PropertyDebt{
				ID:              utils.NanoID(),
				PropertyID:      prop.ID,
				Year:            year,
				DueDate:         time.Date(year, time.January, 5, 0, 0, 0, 0, time.UTC),
				YearlyTaxAmount: tax.YearlyTax,
				TrashFeeAmount:  tax.TrashFee,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.Debts().Create(ctx, debt); err != nil {
				return fmt.Errorf("failed to create debt for %d: %w", year, err)
			}
		}

		out, err = tx.Debts().DebtsByProperty(ctx, prop.ID)
		if err != nil {
			return fmt.Errorf("failed to list debts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PayDebt marks one part of a year's debt as paid. Paying an already paid
// part keeps the original payment time.
func (s *Service) PayDebt(ctx context.Context, userID, propertyID string, year int, kind string) (*types.PropertyDebt, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}

	var debt *types.PropertyDebt
	err = s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		debt, err = tx.Debts().Debt(ctx, prop.ID, year)
		if err != nil {
			if errors.Is(err, types.ErrDebtNotFound) {
				return apperr.NotFound("DEBT_NOT_FOUND")
			}
			return fmt.Errorf("failed to load debt: %w", err)
		}

		now := s.engine.Now()
		switch types.DebtPaymentKind(strings.ToUpper(strings.TrimSpace(kind))) {
		case types.DebtPaymentYearlyTax:
			if !debt.YearlyTaxPaid {
				debt.YearlyTaxPaid = true
				debt.YearlyTaxPaidAt = utils.TimePtr(now)
			}
		case types.DebtPaymentTrashFee:
			if !debt.TrashFeePaid {
				debt.TrashFeePaid = true
				debt.TrashFeePaidAt = utils.TimePtr(now)
			}
		default:
			return apperr.Validation("UNKNOWN_PAYMENT_KIND")
		}

		debt.UpdatedAt = now
		if err := tx.Debts().Update(ctx, debt); err != nil {
			return fmt.Errorf("failed to save debt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debt, nil
}
