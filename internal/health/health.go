// Package health manages personal doctor and referral requests, the
// doctor registry and appointment booking.
package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/cache"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/filelink"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/lifecycle"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

const domain = types.DomainHealth

type Service struct {
	engine  *lifecycle.Engine
	store   store.Store
	files   *files.Service
	doctors cache.DoctorCache
	logger  *logrus.Logger
}

// NewService registers the health request kinds on engine. A nil doctor
// cache disables caching.
func NewService(engine *lifecycle.Engine, fileService *files.Service, doctorCache cache.DoctorCache, logger *logrus.Logger) *Service {
	if doctorCache == nil {
		doctorCache = cache.NoopDoctorCache{}
	}

	s := &Service{
		engine:  engine,
		store:   engine.Store(),
		files:   fileService,
		doctors: doctorCache,
		logger:  logger,
	}

	engine.Register(domain,
		lifecycle.Kind[addDoctorPayload]{
			Name:        types.KindAddPersonalDoctor,
			Check:       refuseOwnPending[addDoctorPayload](types.KindAddPersonalDoctor, "PENDING_ADD_DOCTOR_ALREADY_EXISTS"),
			Materialize: s.approveAddDoctor,
		},
		lifecycle.Kind[removeDoctorPayload]{
			Name:        types.KindRemovePersonalDoctor,
			Check:       s.checkRemoveDoctor,
			Materialize: s.approveRemoveDoctor,
		},
		lifecycle.Kind[referralPayload]{
			Name:        types.KindAddReferral,
			Check:       refuseOwnPending[referralPayload](types.KindAddReferral, "PENDING_REFERRAL_ALREADY_EXISTS"),
			Materialize: s.approveReferral,
		},
	)

	return s
}

func refuseOwnPending[P lifecycle.Payload](kind types.RequestKind, code string) func(context.Context, store.Tx, *types.Request, P) error {
	return func(ctx context.Context, tx store.Tx, req *types.Request, _ P) error {
		return lifecycle.RefusePending(ctx, tx, store.PendingQuery{
			Domain: domain,
			Kind:   kind,
			UserID: req.UserID,
		}, code)
	}
}

func (s *Service) SubmitAddDoctor(ctx context.Context, userID string, in AddDoctorInput, booklet *files.Upload) (*types.Request, error) {
	p := addDoctorPayload{PracticeNumber: strings.TrimSpace(in.PracticeNumber)}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	doctor, err := s.doctorByPracticeNumber(ctx, s.store, p.PracticeNumber)
	if err != nil {
		return nil, err
	}
	if present(in.Doctor) {
		p.Doctor = in.Doctor
	} else {
		p.Doctor = snapshotOf(doctor)
	}

	img, err := s.files.StoreImage(ctx, userID, booklet)
	if err != nil {
		return nil, err
	}

	req, err := s.engine.Submit(ctx, lifecycle.Submission{
		Domain:      domain,
		Kind:        types.KindAddPersonalDoctor,
		UserID:      userID,
		Payload:     p,
		Attachments: []lifecycle.Attachment{{Tag: types.TagBookletImage, FileID: img.ID}},
	})
	if err != nil {
		s.files.Discard(ctx, img)
		return nil, err
	}
	return req, nil
}

func (s *Service) SubmitRemoveDoctor(ctx context.Context, userID string) (*types.Request, error) {
	return s.engine.Submit(ctx, lifecycle.Submission{
		Domain:  domain,
		Kind:    types.KindRemovePersonalDoctor,
		UserID:  userID,
		Payload: removeDoctorPayload{},
	})
}

func (s *Service) checkRemoveDoctor(ctx context.Context, tx store.Tx, req *types.Request, p removeDoctorPayload) error {
	if err := refuseOwnPending[removeDoctorPayload](types.KindRemovePersonalDoctor, "PENDING_REMOVE_DOCTOR_ALREADY_EXISTS")(ctx, tx, req, p); err != nil {
		return err
	}

	profile, err := tx.HealthProfiles().Profile(ctx, req.UserID)
	if err != nil && !errors.Is(err, types.ErrHealthProfileNotFound) {
		return fmt.Errorf("failed to load health profile: %w", err)
	}
	if profile == nil || strings.TrimSpace(utils.PtrString(profile.PersonalDoctorPracticeNumber)) == "" {
		return apperr.Validation("NO_PERSONAL_DOCTOR_TO_REMOVE")
	}
	return nil
}

func (s *Service) SubmitReferral(ctx context.Context, userID, title string, referral *files.Upload) (*types.Request, error) {
	p := referralPayload{Title: strings.TrimSpace(title)}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pdf, err := s.files.StorePDF(ctx, userID, referral)
	if err != nil {
		return nil, err
	}

	req, err := s.engine.Submit(ctx, lifecycle.Submission{
		Domain:      domain,
		Kind:        types.KindAddReferral,
		UserID:      userID,
		Payload:     p,
		Attachments: []lifecycle.Attachment{{Tag: types.TagReferralPDF, FileID: pdf.ID}},
	})
	if err != nil {
		s.files.Discard(ctx, pdf)
		return nil, err
	}
	return req, nil
}

func (s *Service) Approve(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictApprove, AdminID: adminID, Note: note})
}

func (s *Service) Reject(ctx context.Context, requestID, adminID, note string) (*types.Request, error) {
	return s.engine.Decide(ctx, domain, requestID, lifecycle.Decision{Verdict: types.VerdictReject, AdminID: adminID, Note: note})
}

func (s *Service) approveAddDoctor(ctx context.Context, tx store.Tx, req *types.Request, p addDoctorPayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	if !validPracticeNumber(p.PracticeNumber) {
		return lifecycle.Resolution{}, apperr.Validation("PRACTICE_NUMBER_INVALID")
	}
	doctor, err := s.doctorByPracticeNumber(ctx, tx, p.PracticeNumber)
	if err != nil {
		return lifecycle.Resolution{}, err
	}

	snapshot := p.Doctor
	if !present(snapshot) {
		snapshot = snapshotOf(doctor)
	}

	profile, err := s.profileFor(ctx, tx, req.UserID)
	if err != nil {
		return lifecycle.Resolution{}, err
	}
	profile.PersonalDoctorPracticeNumber = utils.StringPtr(p.PracticeNumber)
	profile.PersonalDoctorSnapshot = snapshot
	profile.UpdatedAt = s.engine.Now()
	if err := tx.HealthProfiles().Upsert(ctx, profile); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to save health profile: %w", err)
	}
	return lifecycle.Resolution{}, nil
}

func (s *Service) approveRemoveDoctor(ctx context.Context, tx store.Tx, req *types.Request, _ removeDoctorPayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	profile, err := s.profileFor(ctx, tx, req.UserID)
	if err != nil {
		return lifecycle.Resolution{}, err
	}
	profile.PersonalDoctorPracticeNumber = nil
	profile.PersonalDoctorSnapshot = nil
	profile.UpdatedAt = s.engine.Now()
	if err := tx.HealthProfiles().Upsert(ctx, profile); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to save health profile: %w", err)
	}
	return lifecycle.Resolution{}, nil
}

func (s *Service) approveReferral(ctx context.Context, tx store.Tx, req *types.Request, p referralPayload, _ lifecycle.Decision) (lifecycle.Resolution, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return lifecycle.Resolution{}, apperr.Validation("TITLE_REQUIRED")
	}

	now := s.engine.Now()
	ref := &types.HealthReferral{
		ID:              utils.NanoID(),
		UserID:          req.UserID,
		Title:           title,
		SourceRequestID: utils.StringPtr(req.ID),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Referrals().Create(ctx, ref); err != nil {
		return lifecycle.Resolution{}, fmt.Errorf("failed to create referral: %w", err)
	}

	from := filelink.Key{EntityType: types.EntityHealthRequest, EntityID: req.ID, Tag: types.TagReferralPDF}
	to := filelink.Key{EntityType: types.EntityHealthReferral, EntityID: ref.ID, Tag: types.TagReferralPDF}
	if _, err := filelink.Copy(ctx, tx.FileLinks(), from, to, now); err != nil {
		return lifecycle.Resolution{}, err
	}
	return lifecycle.Resolve(ref.ID), nil
}

// profileFor loads the user's profile or starts a new one.
func (s *Service) profileFor(ctx context.Context, tx store.Tx, userID string) (*types.HealthUserProfile, error) {
	profile, err := tx.HealthProfiles().Profile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, types.ErrHealthProfileNotFound) {
		return nil, fmt.Errorf("failed to load health profile: %w", err)
	}
	now := s.engine.Now()
	return &types.HealthUserProfile{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Service) MyRequests(ctx context.Context, userID string) ([]*types.Request, error) {
	return s.engine.ByUser(ctx, domain, userID)
}

func (s *Service) MyRequest(ctx context.Context, userID, requestID string) (*types.Request, error) {
	return s.engine.Owned(ctx, domain, userID, requestID)
}

// AdminList filters by status. A blank status lists every request.
func (s *Service) AdminList(ctx context.Context, status string) ([]*types.Request, error) {
	st, err := lifecycle.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.engine.List(ctx, domain, st, "")
}

func (s *Service) AdminGet(ctx context.Context, requestID string) (*types.Request, error) {
	return s.engine.Get(ctx, domain, requestID)
}

// Profile returns the user's health profile. A user that never had a
// doctor gets an empty profile.
func (s *Service) Profile(ctx context.Context, userID string) (*types.HealthUserProfile, error) {
	p, err := s.store.HealthProfiles().Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrHealthProfileNotFound) {
			return &types.HealthUserProfile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to load health profile: %w", err)
	}
	return p, nil
}

func (s *Service) MyReferrals(ctx context.Context, userID string) ([]*types.HealthReferral, error) {
	refs, err := s.store.Referrals().ReferralsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return refs, nil
}

func (s *Service) MyReferral(ctx context.Context, userID, referralID string) (*types.HealthReferral, error) {
	ref, err := s.store.Referrals().Referral(ctx, strings.TrimSpace(referralID))
	if err != nil {
		if errors.Is(err, types.ErrReferralNotFound) {
			return nil, apperr.NotFound("REFERRAL_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load referral: %w", err)
	}
	if ref.UserID != userID {
		return nil, apperr.NotFound("REFERRAL_NOT_FOUND")
	}
	return ref, nil
}

func (s *Service) ReferralFile(ctx context.Context, userID, referralID string) (*types.AppFile, io.ReadCloser, error) {
	ref, err := s.MyReferral(ctx, userID, referralID)
	if err != nil {
		return nil, nil, err
	}
	return s.files.Linked(ctx, types.EntityHealthReferral, ref.ID, types.TagReferralPDF)
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
	return s.files.Linked(ctx, types.EntityHealthRequest, requestID, tag)
}
