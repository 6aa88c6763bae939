package transport

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

var egnPattern = regexp.MustCompile(`^[0-9]{10}$`)

type TaxQuote struct {
	VehicleID string  `json:"vehicleId"`
	TaxYear   int     `json:"taxYear"`
	Amount    float64 `json:"amount"`
}

func (s *Service) AnnualTaxQuote(ctx context.Context, userID, vehicleID string) (*TaxQuote, error) {
	v, err := s.MyVehicle(ctx, userID, vehicleID)
	if err != nil {
		return nil, err
	}
	year := s.engine.Now().Year()
	return &TaxQuote{
		VehicleID: v.ID,
		TaxYear:   year,
		Amount:    calc.VehicleAnnualTax(v.PowerKw, v.ManufactureYear, v.EuroCategory, year),
	}, nil
}

// PayAnnualTax records the tax for year, the current year when nil. Paying
// a year twice refreshes the amount and payment time.
func (s *Service) PayAnnualTax(ctx context.Context, userID, vehicleID string, year *int) (*types.VehicleTaxPayment, error) {
	now := s.engine.Now()
	taxYear := now.Year()
	if year != nil {
		taxYear = *year
	}
	if taxYear < 1900 || taxYear > 2100 {
		return nil, apperr.Validation("TAX_YEAR_INVALID")
	}

	var payment *types.VehicleTaxPayment
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		v, err := myVehicle(ctx, tx, userID, vehicleID)
		if err != nil {
			return err
		}

		payment = &types.VehicleTaxPayment{
			ID:        utils.NanoID(),
			VehicleID: v.ID,
			TaxYear:   taxYear,
			Amount:    calc.VehicleAnnualTax(v.PowerKw, v.ManufactureYear, v.EuroCategory, now.Year()),
			PaidAt:    now,
			CreatedAt: now,
		}
		if err := tx.VehicleTaxes().Upsert(ctx, payment); err != nil {
			return fmt.Errorf("failed to record vehicle tax: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"vehicle_id": payment.VehicleID,
		"tax_year":   payment.TaxYear,
		"amount":     payment.Amount,
	}).Info("vehicle tax paid")

	return payment, nil
}

func (s *Service) TaxPayments(ctx context.Context, userID, vehicleID string) ([]*types.VehicleTaxPayment, error) {
	v, err := s.MyVehicle(ctx, userID, vehicleID)
	if err != nil {
		return nil, err
	}
	ps, err := s.store.VehicleTaxes().PaymentsByVehicle(ctx, v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle tax payments: %w", err)
	}
	return ps, nil
}

type VignetteInput struct {
	VehicleID string `form:"vehicleId" json:"vehicleId"`
	Type      string `form:"type" json:"type"`
	// ValidFrom defaults to today.
	ValidFrom string `form:"validFrom" json:"validFrom"`
}

func (s *Service) PurchaseVignette(ctx context.Context, userID, ownerEgn string, in VignetteInput) (*types.TransportVignette, error) {
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, apperr.Validation("VEHICLE_ID_REQUIRED")
	}
	typ := types.VignetteType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if typ == "" {
		return nil, apperr.Validation("TYPE_REQUIRED")
	}
	price, ok := calc.VignettePrice(typ)
	if !ok {
		return nil, apperr.Validation("TYPE_INVALID")
	}

	now := s.engine.Now()
	today := calc.Day(now)
	from := today
	if strings.TrimSpace(in.ValidFrom) != "" {
		var err error
		if from, err = calc.ParseDate(strings.TrimSpace(in.ValidFrom)); err != nil {
			return nil, apperr.Validation("VALID_FROM_INVALID")
		}
	}

	var vignette *types.TransportVignette
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		v, err := myVehicle(ctx, tx, userID, in.VehicleID)
		if err != nil {
			return err
		}

		active, err := tx.Vignettes().ActiveForVehicle(ctx, v.ID, today)
		if err != nil {
			return fmt.Errorf("failed to check active vignette: %w", err)
		}
		if active != nil {
			return apperr.Conflict("ACTIVE_VIGNETTE_ALREADY_EXISTS")
		}

		vignette = &types.TransportVignette{
			ID:         utils.NanoID(),
			UserID:     userID,
			OwnerEgn:   ownerEgn,
			VehicleID:  v.ID,
			Type:       typ,
			Price:      price,
			ValidFrom:  from,
			ValidUntil: calc.VignetteValidUntil(typ, from),
			PaidAt:     now,
			CreatedAt:  now,
		}
		if err := tx.Vignettes().Create(ctx, vignette); err != nil {
			return fmt.Errorf("failed to create vignette: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vignette, nil
}

func (s *Service) MyVignettes(ctx context.Context, userID string) ([]*types.TransportVignette, error) {
	vs, err := s.store.Vignettes().VignettesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vignettes: %w", err)
	}
	return vs, nil
}

type FineInput struct {
	Egn    string   `form:"egn" json:"egn"`
	Type   string   `form:"type" json:"type"`
	Amount *float64 `form:"amount" json:"amount"`
}

// AdminCreateFine issues a fine against an egn. The fine is linked to the
// user holding that egn when one is registered.
func (s *Service) AdminCreateFine(ctx context.Context, in FineInput) (*types.TransportFine, error) {
	egn := strings.TrimSpace(in.Egn)
	if !egnPattern.MatchString(egn) {
		return nil, apperr.Validation("EGN_INVALID")
	}
	typ := types.FineType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if typ == "" {
		return nil, apperr.Validation("TYPE_REQUIRED")
	}
	amount, ok := calc.FineBaseAmount(typ)
	if !ok {
		return nil, apperr.Validation("TYPE_INVALID")
	}
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount < 0 {
		return nil, apperr.Validation("AMOUNT_INVALID")
	}

	var userID *string
	user, err := s.store.Users().UserByEgn(ctx, egn)
	switch {
	case err == nil:
		userID = utils.StringPtr(user.ID)
	case !errors.Is(err, types.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user by egn: %w", err)
	}

	now := s.engine.Now()
	fine := &types.TransportFine{
		ID:        utils.NanoID(),
		UserID:    userID,
		Egn:       egn,
		Type:      typ,
		Amount:    amount,
		IssuedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Fines().Create(ctx, fine); err != nil {
		return nil, fmt.Errorf("failed to create fine: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"fine_id": fine.ID,
		"type":    fine.Type,
		"amount":  fine.Amount,
	}).Info("fine issued")

	return fine, nil
}

func (s *Service) AdminListFines(ctx context.Context) ([]*types.TransportFine, error) {
	fs, err := s.store.Fines().Fines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fines: %w", err)
	}
	return fs, nil
}

func (s *Service) MyFines(ctx context.Context, egn string) ([]*types.TransportFine, error) {
	fs, err := s.store.Fines().FinesByEgn(ctx, egn)
	if err != nil {
		return nil, fmt.Errorf("failed to list fines: %w", err)
	}
	return fs, nil
}

func (s *Service) PayFine(ctx context.Context, egn, fineID string) (*types.TransportFine, error) {
	var fine *types.TransportFine
	err := s.store.RunInTx(ctx, func(tx store.Tx) error {
		var err error
		fine, err = tx.Fines().Fine(ctx, strings.TrimSpace(fineID))
		if err != nil {
			if errors.Is(err, types.ErrFineNotFound) {
				return apperr.NotFound("FINE_NOT_FOUND")
			}
			return fmt.Errorf("failed to load fine: %w", err)
		}
		if fine.Egn != egn {
			return apperr.NotFound("FINE_NOT_FOUND")
		}
		if fine.Paid {
			return apperr.Conflict("FINE_ALREADY_PAID")
		}

		now := s.engine.Now()
		fine.Paid = true
		fine.PaidAt = utils.TimePtr(now)
		fine.UpdatedAt = now
		if err := tx.Fines().Update(ctx, fine); err != nil {
			return fmt.Errorf("failed to save fine: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}
