// Package transport covers vehicle registration and technical inspection
// requests together with annual vehicle tax, vignettes and traffic fines.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/calc"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/filelink"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/lifecycle"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

const domain = types.DomainTransport

type Service struct {
	engine *lifecycle.Engine
	store  store.Store
	files  *files.Service
	logger *logrus.Logger
}

func NewService(engine *lifecycle.Engine, fileService *files.Service, logger *logrus.Logger) *Service {
	s := &Service{
		engine: engine,
		store:  engine.Store(),
		files:  fileService,
		logger: logger,
	}

	engine.Register(domain,
		lifecycle.Kind[addVehiclePayload]{
			Name:        types.KindAddVehicle,
			Check:       s.checkAddVehicle,
			Materialize: s.approveAddVehicle,
		},
		lifecycle.Kind[techPayload]{
			Name:        types.KindTechInspection,
			Check:       s.checkTech,
			Materialize: s.approveTech,
		},
	)

	return s
}

func (s *Service) SubmitAddVehicle(ctx context.Context, userID, ownerEgn string, in AddVehicleInput, registrationDoc *files.Upload) (*types.Request, error) {
	p := newAddVehiclePayload(in)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := files.RequirePDF(registrationDoc); err != nil {
		return nil, err
	}

	pdf, err := s.files.StorePDF(ctx, userID, registrationDoc)
	if err != nil {
		return nil, err
	}

	req, err := s.engine.Submit(ctx, lifecycle.Submission{
		Domain:      domain,
		Kind:        types.KindAddVehicle,
		UserID:      userID,
		Payload:     p,
		RegNumber:   utils.StringPtr(p.RegNumber),
		OwnerEgn:    utils.NonBlankPtr(ownerEgn),
		Attachments: []lifecycle.Attachment{{Tag: types.TagRegistrationDoc, FileID: pdf.ID}},
	})
	if err != nil {
		s.files.Discard(ctx, pdf)
		return nil, err
	}
	return req, nil
}

func (s *Service) checkAddVehicle(ctx context.Context, tx store.Tx, _ *types.Request, p addVehiclePayload) error {
	exists, err := tx.Vehicles().ExistsByRegNumber(ctx, p.RegNumber)
	if err != nil {
		return fmt.Errorf("failed to check reg number: %w", err)
	}
	if exists {
		return apperr.Conflict("VEHICLE_WITH_REG_ALREADY_EXISTS")
	}
	return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
		Domain:    domain,
		Kind:      types.KindAddVehicle,
		RegNumber: p.RegNumber,
	}, "PENDING_ADD_ALREADY_EXISTS")
}

func (s *Service) SubmitTechInspection(ctx context.Context, userID, ownerEgn string, in TechInput, inspectionDoc *files.Upload) (*types.Request, error) {
	p := techPayload{
		VehicleID:      strings.TrimSpace(in.VehicleID),
		InspectionDate: strings.TrimSpace(in.InspectionDate),
		InspectionDoc:  pdfLabel,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := files.RequirePDF(inspectionDoc); err != nil {
		return nil, err
	}

	v, err := s.MyVehicle(ctx, userID, p.VehicleID)
	if err != nil {
		return nil, err
	}

	if err := p.setValidUntil(); err != nil {
		return nil, err
	}
	p.RegNumber = v.RegNumber
	p.Brand = v.Brand
	p.Model = v.Model

	pdf, err := s.files.StorePDF(ctx, userID, inspectionDoc)
	if err != nil {
		return nil, err
	}

	req, err := s.engine.Submit(ctx, lifecycle.Submission{
		Domain:      domain,
		Kind:        types.KindTechInspection,
		UserID:      userID,
		Payload:     p,
		TargetID:    utils.StringPtr(v.ID),
		OwnerEgn:    utils.NonBlankPtr(ownerEgn),
		Attachments: []lifecycle.Attachment{{Tag: types.TagTechInspectionDoc, FileID: pdf.ID}},
	})
	if err != nil {
		s.files.Discard(ctx, pdf)
		return nil, err
	}
	return req, nil
}

func (s *Service) checkTech(ctx context.Context, tx store.Tx, _ *types.Request, p techPayload) error {
	return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
		Domain:   domain,
		Kind:     types.KindTechInspection,
		TargetID: p.VehicleID,
	}, "PENDING_TECH_ALREADY_EXISTS")
}

func (s *Service) Approve(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictApprove, AdminID: adminID, Note: note})
}

func (s *Service) Reject(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictReject, AdminID: adminID, Note: note})
}

func (s *Service) approveAddVehicle(ctx context.Context, tx store.Tx, req *types.Request, p addVehiclePayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	reg := utils.PtrString(req.RegNumber)
	if strings.TrimSpace(reg) == "" {
		reg = p.RegNumber
	}
	if strings.TrimSpace(reg) == "" {
		return lifecycle.Resolution{}, apperr.Validation("REG_NUMBER_REQUIRED")
	}

	exists, err := tx.Vehicles().ExistsByRegNumber(ctx, reg)
	if err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to check reg number: %w", err)
	}
	if exists {
		return lifecycle.Resolution{}, apperr.Conflict("VEHICLE_WITH_REG_ALREADY_EXISTS")
	}

	now := s.engine.Now()
	v := &types.TransportVehicle{
		ID:              utils.NanoID(),
		UserID:          req.UserID,
		OwnerEgn:        utils.PtrString(req.OwnerEgn),
		RegNumber:       reg,
		Brand:           p.Brand,
		Model:           p.Model,
		ManufactureYear: p.ManufactureYear,
		PowerKw:         p.PowerKw,
		EuroCategory:    p.EuroCategory,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Vehicles().Create(ctx, v); err != nil {
		if errors.Is(err, types.ErrDuplicateKey) {
			return lifecycle.Resolution{}, apperr.Conflict("VEHICLE_WITH_REG_ALREADY_EXISTS")
		}
		return lifecycle.Resolution{}, fmt.Errorf("failed to create vehicle: %w", err)
	}

	if err := s.copyDoc(ctx, tx, req.ID, v.ID, types.TagRegistrationDoc, now); err != nil {
		return lifecycle.Resolution{}, err
	}
	return lifecycle.Resolve(v.ID), nil
}

func (s *Service) approveTech(ctx context.Context, tx store.Tx, req *types.Request, p techPayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	id := utils.PtrString(req.TargetID)
	if id == "" {
		id = strings.TrimSpace(p.VehicleID)
	}
	if id == "" {
		return lifecycle.Resolution{}, apperr.Validation("VEHICLE_ID_REQUIRED")
	}

	v, err := tx.Vehicles().Vehicle(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrVehicleNotFound) {
			return lifecycle.Resolution{}, apperr.NotFound("VEHICLE_NOT_FOUND")
		}
		return lifecycle.Resolution{}, fmt.Errorf("failed to load vehicle: %w", err)
	}

	now := s.engine.Now()
	inspection, err := calc.ParseDate(p.InspectionDate)
	if err != nil {
		inspection = calc.Day(now)
	}
	validUntil, err := calc.ParseDate(p.ValidUntil)
	if err != nil {
		validUntil = calc.TechInspectionValidUntil(inspection)
	}

	v.TechInspectionDate = utils.TimePtr(inspection)
	v.TechInspectionValidUntil = utils.TimePtr(validUntil)
	v.TechInspectionApprovedAt = utils.TimePtr(now)
	v.UpdatedAt = now
	if err := tx.Vehicles().Update(ctx, v); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to update vehicle: %w", err)
	}

	if err := s.copyDoc(ctx, tx, req.ID, v.ID, types.TagTechInspectionDoc, now); err != nil {
		return lifecycle.Resolution{}, err
	}
	return lifecycle.Resolve(v.ID), nil
}

func (s *Service) copyDoc(ctx context.Context, tx store.Tx, requestID, vehicleID string, tag types.FileTag, at time.Time) error {
	from := filelink.Key{EntityType: types.EntityVehicleRequest, EntityID: requestID, Tag: tag}
	to := filelink.Key{EntityType: types.EntityVehicle, EntityID: vehicleID, Tag: tag}
	_, err := filelink.Copy(ctx, tx.FileLinks(), from, to, at)
	return err
}

func (s *Service) MyRequests(ctx context.Context, userID string) ([]*types.Request, error) {
	return s.engine.ByUser(ctx, domain, userID)
}

func (s *Service) MyRequest(ctx context.Context, userID, requestID string) (*types.Request, error) {
	return s.engine.Owned(ctx, domain, userID, requestID)
}

// AdminList returns every request that was not rejected.
func (s *Service) AdminList(ctx context.Context) ([]*types.Request, error) {
	return s.engine.List(ctx, domain, "", types.RequestStatusRejected)
}

func (s *Service) AdminGet(ctx context.Context, requestID string) (*types.Request, error) {
	return s.engine.Get(ctx, domain, requestID)
}

func (s *Service) MyVehicles(ctx context.Context, userID string) ([]*types.TransportVehicle, error) {
	vs, err := s.store.Vehicles().VehiclesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vs, nil
}

func (s *Service) MyVehicle(ctx context.Context, userID, vehicleID string) (*types.TransportVehicle, error) {
	return myVehicle(ctx, s.store, userID, vehicleID)
}

func myVehicle(ctx context.Context, tx store.Tx, userID, vehicleID string) (*types.TransportVehicle, error) {
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return nil, apperr.Validation("VEHICLE_ID_REQUIRED")
	}
	v, err := tx.Vehicles().Vehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, types.ErrVehicleNotFound) {
			return nil, apperr.NotFound("VEHICLE_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}
	if v.UserID != userID {
		return nil, apperr.NotFound("VEHICLE_NOT_FOUND")
	}
	return v, nil
}

func (s *Service) VehicleFile(ctx context.Context, userID, vehicleID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error) {
	v, err := s.MyVehicle(ctx, userID, vehicleID)
	if err != nil {
		return nil, nil, err
	}
	return s.files.Linked(ctx, types.EntityVehicle, v.ID, tag)
}

// RequestFile opens a file attached to a request. A non-empty userID
// restricts the lookup to that user's requests.
func (s *Service) RequestFile(ctx context.Context, userID, requestID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error) {
	var err error
	if userID != "" {
		_, err = s.MyRequest(ctx, userID, requestID)
	} else {
		_, err = s.AdminGet(ctx, requestID)
	}
	if err != nil {
		return nil, nil, err
	}
	return s.files.Linked(ctx, types.EntityVehicleRequest, requestID, tag)
}
