// Package property handles property registration, removal, tax assessment
// and sketch requests, and the yearly debts derived from an assessment.
package property

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

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

const domain = types.DomainProperty

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
		lifecycle.Kind[addPayload]{
			Name:        types.KindAddProperty,
			Check:       s.checkAdd,
			Materialize: s.approveAdd,
		},
		lifecycle.Kind[removePayload]{
			Name: types.KindRemoveProperty,
			Check: func(ctx context.Context, tx store.Tx, req *types.Request, p removePayload) error {
				return s.refuseTargetPending(ctx, tx, types.KindRemoveProperty, p.PropertyID, "PENDING_REMOVE_ALREADY_EXISTS")
			},
			Materialize: s.approveRemove,
		},
		lifecycle.Kind[taxPayload]{
			Name: types.KindTaxAssessment,
			Check: func(ctx context.Context, tx store.Tx, req *types.Request, p taxPayload) error {
				return s.refuseTargetPending(ctx, tx, types.KindTaxAssessment, p.PropertyID, "PENDING_TAX_ALREADY_EXISTS")
			},
			Materialize: s.approveTax,
		},
		lifecycle.Kind[sketchPayload]{
			Name: types.KindSketch,
			Check: func(ctx context.Context, tx store.Tx, req *types.Request, p sketchPayload) error {
				return s.refuseTargetPending(ctx, tx, types.KindSketch, p.PropertyID, "PENDING_SKETCH_ALREADY_EXISTS")
			},
			Materialize: s.approveSketch,
		},
	)

	return s
}

func (s *Service) refuseTargetPending(ctx context.Context, tx store.Tx, kind types.RequestKind, propertyID, code string) error {
	return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
		Domain:   domain,
		Kind:     kind,
		TargetID: propertyID,
	}, code)
}

func (s *Service) SubmitAdd(ctx context.Context, userID string, in AddInput, ownershipDoc *files.Upload) (*types.Request, error) {
	if ownershipDoc == nil || ownershipDoc.Size <= 0 {
		return nil, apperr.Validation("OWNERSHIP_DOC_REQUIRED")
	}
	if err := files.RequirePDF(ownershipDoc); err != nil {
		return nil, err
	}

	p := addPayload{
		Type:         strings.TrimSpace(in.Type),
		Oblast:       strings.TrimSpace(in.Oblast),
		Place:        strings.TrimSpace(in.Place),
		Address:      strings.TrimSpace(in.Address),
		AreaSqm:      in.AreaSqm,
		PurchaseYear: in.PurchaseYear,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pdf, err := s.files.StorePDF(ctx, userID, ownershipDoc)
	if err != nil {
		return nil, err
	}

	req, err := s.engine.Submit(ctx, lifecycle.Submission{
		Domain:      domain,
		Kind:        types.KindAddProperty,
		UserID:      userID,
		Payload:     p,
		Attachments: []lifecycle.Attachment{{Tag: types.TagOwnershipDoc, FileID: pdf.ID}},
	})
	if err != nil {
		s.files.Discard(ctx, pdf)
		return nil, err
	}
	return req, nil
}

func (s *Service) checkAdd(ctx context.Context, tx store.Tx, req *types.Request, _ addPayload) error {
	return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
		Domain: domain,
		Kind:   types.KindAddProperty,
		UserID: req.UserID,
	}, "PENDING_ADD_ALREADY_EXISTS")
}

func (s *Service) SubmitRemove(ctx context.Context, userID, propertyID, reason string) (*types.Request, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.Active {
		return nil, apperr.Validation("PROPERTY_ALREADY_INACTIVE")
	}

	return s.engine.Submit(ctx, lifecycle.Submission{
		Domain: domain,
		Kind:   types.KindRemoveProperty,
		UserID: userID,
		Payload: removePayload{
			PropertyID: prop.ID,
			snapshot:   snapshotOf(prop),
			Reason:     reason,
		},
		TargetID: utils.StringPtr(prop.ID),
	})
}

func (s *Service) SubmitTaxAssessment(ctx context.Context, userID string, in TaxInput) (*types.Request, error) {
	prop, err := s.activeProperty(ctx, userID, in.PropertyID)
	if err != nil {
		return nil, err
	}

	return s.engine.Submit(ctx, lifecycle.Submission{
		Domain: domain,
		Kind:   types.KindTaxAssessment,
		UserID: userID,
		Payload: taxPayload{
			PropertyID:   prop.ID,
			Neighborhood: in.Neighborhood,
			District:     in.Neighborhood,
			Purpose:      in.Purpose,
			PurposeOther: in.PurposeOther,
			HasAdjParts:  in.HasAdjParts,
			snapshot:     snapshotOf(prop),
		},
		TargetID: utils.StringPtr(prop.ID),
	})
}

func (s *Service) SubmitSketch(ctx context.Context, userID string, in SketchInput) (*types.Request, error) {
	prop, err := s.activeProperty(ctx, userID, in.PropertyID)
	if err != nil {
		return nil, err
	}

	termDays := 7
	if in.TermDays != nil {
		termDays = *in.TermDays
	}
	term := "standard"
	if termDays == 3 {
		term = "fast"
	}

	return s.engine.Submit(ctx, lifecycle.Submission{
		Domain: domain,
		Kind:   types.KindSketch,
		UserID: userID,
		Payload: sketchPayload{
			PropertyID: prop.ID,
			DocType:    in.DocType,
			TermDays:   termDays,
			Term:       term,
			snapshot:   snapshotOf(prop),
		},
		TargetID: utils.StringPtr(prop.ID),
	})
}

func (s *Service) activeProperty(ctx context.Context, userID, propertyID string) (*types.Property, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	if !prop.Active {
		return nil, apperr.Validation("PROPERTY_INACTIVE")
	}
	return prop, nil
}

func (s *Service) Approve(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictApprove, AdminID: adminID, Note: note})
}

func (s *Service) Reject(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictReject, AdminID: adminID, Note: note})
}

// ApproveSketch approves a SKETCH request with the sketch PDF produced by
// the admin. The PDF is stored under the property owner.
func (s *Service) ApproveSketch(ctx context.Context, requestID, adminID, note string, pdf *files.Upload) (*types.Request, error) {
	req, err := s.engine.Get(ctx, domain, requestID)
	if err != nil {
		return nil, err
	}
	if req.Kind != types.KindSketch {
		return nil, apperr.Validation("REQUEST_KIND_NOT_SKETCH")
	}
	if !req.Pending() {
		return nil, apperr.Conflict(domain.AlreadyDecidedCode())
	}
	if err := files.RequirePDF(pdf); err != nil {
		return nil, err
	}

	prop, err := s.target(ctx, s.store, req)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.StorePDF(ctx, prop.OwnerUserID, pdf)
	if err != nil {
		return nil, err
	}

	decided, err := s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{
		Verdict: types.VerdictApprove,
		AdminID: adminID,
		Note:    note,
		FileID:  stored.ID,
	})
	if err != nil {
		s.files.Discard(ctx, stored)
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"property_id": prop.ID,
		"file_id":     stored.ID,
		"admin_id":    adminID,
	}).Info("property sketch issued")

	return decided, nil
}

// target loads the property a request points at.
func (s *Service) target(ctx context.Context, tx store.Tx, req *types.Request) (*types.Property, error) {
	id := utils.PtrString(req.TargetID)
	if id == "" {
		return nil, apperr.Validation("PROPERTY_ID_REQUIRED")
	}
	prop, err := tx.Properties().Property(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrPropertyNotFound) {
			return nil, apperr.NotFound("PROPERTY_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return prop, nil
}

func (s *Service) approveAdd(ctx context.Context, tx store.Tx, req *types.Request, p addPayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	now := s.engine.Now()
	prop := &types.Property{
		ID:           utils.NanoID(),
		OwnerUserID:  req.UserID,
		Type:         p.Type,
		Oblast:       p.Oblast,
		Place:        p.Place,
		Address:      p.Address,
		AreaSqm:      p.AreaSqm,
		PurchaseYear: p.PurchaseYear,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Properties().Create(ctx, prop); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to create property: %w", err)
	}

	from := filelink.Key{EntityType: types.EntityPropertyRequest, EntityID: req.ID, Tag: types.TagOwnershipDoc}
	to := filelink.Key{EntityType: types.EntityProperty, EntityID: prop.ID, Tag: types.TagOwnershipDoc}
	if _, err := filelink.Copy(ctx, tx.FileLinks(), from, to, now); err != nil {
		return lifecycle.Resolution{}, err
	}

	return lifecycle.Resolve(prop.ID), nil
}

func (s *Service) approveRemove(ctx context.Context, tx store.Tx, req *types.Request, _ removePayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	prop, err := s.target(ctx, tx, req)
	if err != nil {
		return lifecycle.Resolution{}, err
	}
	if !prop.Active {
		return lifecycle.Resolution{}, apperr.Validation("PROPERTY_ALREADY_INACTIVE")
	}

	now := s.engine.Now()
	prop.Active = false
	prop.DeactivatedAt = utils.TimePtr(now)
	prop.UpdatedAt = now
	if err := tx.Properties().Update(ctx, prop); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to deactivate property: %w", err)
	}
	return lifecycle.Resolution{}, nil
}

func (s *Service) approveTax(ctx context.Context, tx store.Tx, req *types.Request, p taxPayload, d lifecycle.Decision) (lifecycle.Resolution, error) {
	prop, err := s.target(ctx, tx, req)
	if err != nil {
		return lifecycle.Resolution{}, err
	}

	neighborhood := p.Neighborhood
	if strings.TrimSpace(neighborhood) == "" {
		neighborhood = p.District
	}
	district := p.District
	if district == "" {
		district = p.Neighborhood
	}

	area, typ, oblast := prop.AreaSqm, prop.Type, prop.Oblast
	if p.AreaSqm != nil {
		area = *p.AreaSqm
	}
	if p.Type != nil {
		typ = *p.Type
	}
	if p.Oblast != nil {
		oblast = *p.Oblast
	}

	hasParts := p.hasParts()
	amounts := calc.Assess(area, typ, oblast, district, p.Purpose, hasParts)

	now := s.engine.Now()
	assessment, err := tx.TaxAssessments().AssessmentByProperty(ctx, prop.ID)
	exists := err == nil
	if err != nil {
		if !errors.Is(err, types.ErrTaxAssessmentNotFound) {
			return lifecycle.Resolution{}, fmt.Errorf("failed to load tax assessment: %w", err)
		}
		assessment = &types.PropertyTaxAssessment{
			ID:         utils.NanoID(),
			PropertyID: prop.ID,
			CreatedAt:  now,
		}
	}

	assessment.RequestID = req.ID
	assessment.Neighborhood = neighborhood
	assessment.Purpose = p.Purpose
	assessment.PurposeOther = p.PurposeOther
	assessment.HasAdjoiningParts = hasParts
	assessment.Price = float64(amounts.Price)
	assessment.YearlyTax = float64(amounts.YearlyTax)
	assessment.TrashFee = float64(amounts.TrashFee)
	assessment.ApprovedAt = now
	assessment.ApprovedByAdminID = utils.NonBlankPtr(d.AdminID)

	if exists {
		err = tx.TaxAssessments().Update(ctx, assessment)
	} else {
		err = tx.TaxAssessments().Create(ctx, assessment)
	}
	if err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to save tax assessment: %w", err)
	}
	return lifecycle.Resolution{}, nil
}

func (s *Service) approveSketch(ctx context.Context, tx store.Tx, req *types.Request, p sketchPayload, d lifecycle.Decision) (lifecycle.Resolution, error) {
	if d.FileID == "" {
		return lifecycle.Resolution{}, apperr.Validation("USE_APPROVE_SKETCH_ENDPOINT_WITH_PDF")
	}
	prop, err := s.target(ctx, tx, req)
	if err != nil {
		return lifecycle.Resolution{}, err
	}

	now := s.engine.Now()
	sketch := &types.PropertySketch{
		ID:                utils.NanoID(),
		PropertyID:        prop.ID,
		RequestID:         req.ID,
		DocType:           p.docType(),
		TermDays:          p.termDays(),
		ApprovedAt:        now,
		ApprovedByAdminID: utils.NonBlankPtr(d.AdminID),
		CreatedAt:         now,
	}
	if err := tx.Sketches().Upsert(ctx, sketch); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to save sketch: %w", err)
	}

	key := filelink.Key{EntityType: types.EntityProperty, EntityID: prop.ID, Tag: types.TagSketchPDF}
	if _, err := filelink.Retag(ctx, tx.FileLinks(), key, d.FileID, now); err != nil {
		return lifecycle.Resolution{}, err
	}
	return lifecycle.Resolution{}, nil
}

func (s *Service) MyRequests(ctx context.Context, userID string) ([]*types.Request, error) {
	return s.engine.ByUser(ctx, domain, userID)
}

func (s *Service) MyRequest(ctx context.Context, userID, requestID string) (*types.Request, error) {
	return s.engine.Owned(ctx, domain, userID, requestID)
}

// AdminList filters by status. A blank status lists everything except
// rejected requests.
func (s *Service) AdminList(ctx context.Context, status string) ([]*types.Request, error) {
	st, err := lifecycle.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(status) == "" {
		return s.engine.List(ctx, domain, "", types.RequestStatusRejected)
	}
	return s.engine.List(ctx, domain, st, "")
}

func (s *Service) AdminGet(ctx context.Context, requestID string) (*types.Request, error) {
	return s.engine.Get(ctx, domain, requestID)
}

func (s *Service) MyActiveProperties(ctx context.Context, userID string) ([]*types.Property, error) {
	props, err := s.store.Properties().PropertiesByOwner(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

func (s *Service) MyProperty(ctx context.Context, userID, propertyID string) (*types.Property, error) {
	prop, err := s.store.Properties().Property(ctx, strings.TrimSpace(propertyID))
	if err != nil {
		if errors.Is(err, types.ErrPropertyNotFound) {
			return nil, apperr.NotFound("PROPERTY_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	if prop.OwnerUserID != userID {
		return nil, apperr.NotFound("PROPERTY_NOT_FOUND")
	}
	return prop, nil
}

func (s *Service) MyTaxAssessment(ctx context.Context, userID, propertyID string) (*types.PropertyTaxAssessment, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	a, err := s.store.TaxAssessments().AssessmentByProperty(ctx, prop.ID)
	if err != nil {
		if errors.Is(err, types.ErrTaxAssessmentNotFound) {
			return nil, apperr.NotFound("TAX_ASSESSMENT_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load tax assessment: %w", err)
	}
	return a, nil
}

func (s *Service) MySketch(ctx context.Context, userID, propertyID string) (*types.PropertySketch, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	sk, err := s.store.Sketches().SketchByProperty(ctx, prop.ID)
	if err != nil {
		if errors.Is(err, types.ErrSketchNotFound) {
			return nil, apperr.NotFound("SKETCH_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load sketch: %w", err)
	}
	return sk, nil
}

func (s *Service) PropertyFile(ctx context.Context, userID, propertyID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error) {
	prop, err := s.MyProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	return s.files.Linked(ctx, types.EntityProperty, prop.ID, tag)
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
	return s.files.Linked(ctx, types.EntityPropertyRequest, requestID, tag)
}
