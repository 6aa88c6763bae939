// Package documents handles requests to add and remove personal documents
// (identity cards, passports and driver licenses).
package documents

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

const domain = types.DomainDocument

var photoTags = []types.FileTag{types.TagPhoto1, types.TagPhoto2}

type Service struct {
	engine *lifecycle.Engine
	store  store.Store
	files  *files.Service
	logger *logrus.Logger
}

// NewService registers the document kinds with engine.
func NewService(engine *lifecycle.Engine, fileService *files.Service, logger *logrus.Logger) *Service {
	s := &Service{
		engine: engine,
		store:  engine.Store(),
		files:  fileService,
		logger: logger,
	}

	engine.Register(domain,
		lifecycle.Kind[addPayload]{
			Name:        types.KindAddDocument,
			Check:       s.checkAdd,
			Materialize: s.approveAdd,
		},
		lifecycle.Kind[removePayload]{
			Name:        types.KindRemoveDocument,
			Check:       s.checkRemove,
			Materialize: s.approveRemove,
			MarkFirst:   true,
		},
	)

	return s
}

func (s *Service) SubmitAdd(ctx context.Context, userID, userEgn string, in AddInput, photo1, photo2 *files.Upload) (*types.Request, error) {
	p := newAddPayload(in, userEgn, s.engine.Now())
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := files.RequireImage(photo1); err != nil {
		return nil, err
	}
	if err := files.RequireImage(photo2); err != nil {
		return nil, err
	}

	f1, err := s.files.StoreImage(ctx, userID, photo1)
	if err != nil {
		return nil, err
	}
	f2, err := s.files.StoreImage(ctx, userID, photo2)
	if err != nil {
		s.files.Discard(ctx, f1)
		return nil, err
	}

	docType := p.Type
	req, err := s.engine.Submit(ctx, lifecycle.Submission{
		Domain:       domain,
		Kind:         types.KindAddDocument,
		UserID:       userID,
		Payload:      p,
		DocumentType: &docType,
		Attachments: []lifecycle.Attachment{
			{Tag: types.TagPhoto1, FileID: f1.ID},
			{Tag: types.TagPhoto2, FileID: f2.ID},
		},
	})
	if err != nil {
		s.files.Discard(ctx, f1, f2)
		return nil, err
	}
	return req, nil
}

func (s *Service) checkAdd(ctx context.Context, tx store.Tx, req *types.Request, p addPayload) error {
	_, err := tx.Documents().DocumentByUserAndType(ctx, req.UserID, p.Type)
	switch {
	case err == nil:
		return apperr.Conflict("DOCUMENT_OF_TYPE_ALREADY_EXISTS")
	case !errors.Is(err, types.ErrDocumentNotFound):
		return fmt.Errorf("failed to look up document: %w", err)
	}

	return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
		Domain:       domain,
		Kind:         types.KindAddDocument,
		UserID:       req.UserID,
		DocumentType: p.Type,
	}, "PENDING_ADD_ALREADY_EXISTS")
}

func (s *Service) SubmitRemove(ctx context.Context, userID, documentID, reason string) (*types.Request, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, apperr.Validation("DOCUMENT_ID_REQUIRED")
	}

	doc, err := s.MyDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	return s.engine.Submit(ctx, lifecycle.Submission{
		Domain: domain,
		Kind:   types.KindRemoveDocument,
		UserID: userID,
		Payload: removePayload{
			DocumentID: doc.ID,
			Reason:     strings.TrimSpace(reason),
			Type:       doc.Type,
			DocNumber:  doc.DocNumber,
			ValidUntil: calc.FormatDate(doc.ValidUntil),
		},
		TargetID: utils.StringPtr(doc.ID),
	})
}

func (s *Service) checkRemove(ctx context.Context, tx store.Tx, req *types.Request, p removePayload) error {
	return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
		Domain:   domain,
		Kind:     types.KindRemoveDocument,
		UserID:   req.UserID,
		TargetID: p.DocumentID,
	}, "PENDING_REMOVE_ALREADY_EXISTS")
}

func (s *Service) approveAdd(ctx context.Context, tx store.Tx, req *types.Request, p addPayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	if req.DocumentType == nil || *req.DocumentType == "" {
		return lifecycle.Resolution{}, apperr.Validation("DOCUMENT_TYPE_REQUIRED")
	}
	docType := *req.DocumentType

	_, err := tx.Documents().DocumentByUserAndType(ctx, req.UserID, docType)
	switch {
	case err == nil:
		return lifecycle.Resolution{}, apperr.Conflict("DOCUMENT_OF_TYPE_ALREADY_EXISTS")
	case !errors.Is(err, types.ErrDocumentNotFound):
		return lifecycle.Resolution{}, fmt.Errorf("failed to look up document: %w", err)
	}

	dob, err := calc.ParseDate(p.Dob)
	if err != nil {
		return lifecycle.Resolution{}, apperr.Validation("DOB_INVALID")
	}
	validUntil, err := calc.ParseDate(p.ValidUntil)
	if err != nil {
		return lifecycle.Resolution{}, apperr.Validation("VALID_UNTIL_INVALID")
	}

	now := s.engine.Now()
	doc := &types.Document{
		ID:         utils.NanoID(),
		UserID:     req.UserID,
		Type:       docType,
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		LastName:   p.LastName,
		Egn:        p.Egn,
		Gender:     p.Gender,
		Dob:        dob,
		DocNumber:  p.DocNumber,
		ValidUntil: validUntil,
		IssuedAt:   p.IssuedAt,
		BirthPlace: p.BirthPlace,
		Address:    p.Address,
		Categories: append([]string{}, p.Categories...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Documents().Create(ctx, doc); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to create document: %w", err)
	}

	for _, tag := range photoTags {
		from := filelink.Key{EntityType: types.EntityDocumentRequest, EntityID: req.ID, Tag: tag}
		to := filelink.Key{EntityType: types.EntityDocument, EntityID: doc.ID, Tag: tag}
		if _, err := filelink.Copy(ctx, tx.FileLinks(), from, to, now); err != nil {
			return lifecycle.Resolution{}, err
		}
	}

	return lifecycle.Resolve(doc.ID), nil
}

// approveRemove runs after the request is already marked APPROVED.
func (s *Service) approveRemove(ctx context.Context, tx store.Tx, req *types.Request, p removePayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	doc, err := s.resolveRemoval(ctx, tx, req, p)
	if err != nil {
		return lifecycle.Resolution{}, err
	}

	if p.DocNumber != "" && doc.DocNumber != p.DocNumber {
		return lifecycle.Resolution{}, apperr.Conflict("DOCUMENT_SNAPSHOT_MISMATCH")
	}
	if doc.UserID != req.UserID {
		return lifecycle.Resolution{}, apperr.Conflict("DOCUMENT_OWNER_MISMATCH")
	}

	for _, tag := range photoTags {
		key := filelink.Key{EntityType: types.EntityDocument, EntityID: doc.ID, Tag: tag}
		if err := filelink.Remove(ctx, tx.FileLinks(), key); err != nil {
			return lifecycle.Resolution{}, err
		}
	}
	if err := tx.Documents().Delete(ctx, doc.ID); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to delete document: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":    req.ID,
		"document_id":   doc.ID,
		"document_type": doc.Type,
		"user_id":       doc.UserID,
	}).Info("document removed")

	return lifecycle.Resolution{Clear: true}, nil
}

// resolveRemoval finds the document a REMOVE_DOCUMENT request points at:
// the request's target, then the payload id, then the user's document of
// the payload type.
func (s *Service) resolveRemoval(ctx context.Context, tx store.Tx, req *types.Request, p removePayload) (*types.Document, error) {
	id := utils.PtrString(req.TargetID)
	if id == "" {
		id = strings.TrimSpace(p.DocumentID)
	}

	if id != "" {
		doc, err := tx.Documents().Document(ctx, id)
		if err != nil {
			if errors.Is(err, types.ErrDocumentNotFound) {
				return nil, apperr.NotFound("DOCUMENT_NOT_FOUND")
			}
			return nil, fmt.Errorf("failed to load document: %w", err)
		}
		return doc, nil
	}

	if !p.Type.Valid() {
		return nil, apperr.Validation("DOCUMENT_ID_REQUIRED")
	}
	doc, err := tx.Documents().DocumentByUserAndType(ctx, req.UserID, p.Type)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			return nil, apperr.NotFound("DOCUMENT_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to look up document: %w", err)
	}
	return doc, nil
}

func (s *Service) Approve(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictApprove, AdminID: adminID, Note: note})
}

func (s *Service) Reject(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictReject, AdminID: adminID, Note: note})
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

func (s *Service) MyDocuments(ctx context.Context, userID string) ([]*types.Document, error) {
	docs, err := s.store.Documents().DocumentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *Service) MyDocument(ctx context.Context, userID, documentID string) (*types.Document, error) {
	doc, err := s.store.Documents().Document(ctx, documentID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			return nil, apperr.NotFound("DOCUMENT_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc.UserID != userID {
		return nil, apperr.NotFound("DOCUMENT_NOT_FOUND")
	}
	return doc, nil
}

// RequestFile opens a photo attached to a request. A non-empty userID
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
	return s.files.Linked(ctx, types.EntityDocumentRequest, requestID, tag)
}

func (s *Service) DocumentFile(ctx context.Context, userID, documentID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error) {
	if _, err := s.MyDocument(ctx, userID, documentID); err != nil {
		return nil, nil, err
	}
	return s.files.Linked(ctx, types.EntityDocument, documentID, tag)
}
