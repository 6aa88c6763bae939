// Package lifecycle implements the request state machine shared by every
// domain. A request is created PENDING and moves exactly once to APPROVED
// or REJECTED. Approval runs the kind's Materializer in the same
// transaction as the status change.
package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/filelink"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/metrics"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

type Decision struct {
	Verdict types.Verdict
	AdminID string
	Note    string
	// FileID is an artifact supplied by the admin with the decision.
	FileID string
}

// Attachment is an uploaded file linked to the request under Tag.
type Attachment struct {
	Tag    types.FileTag
	FileID string
}

type Submission struct {
	Domain       types.RequestDomain
	Kind         types.RequestKind
	UserID       string
	Payload      Payload
	TargetID     *string
	DocumentType *types.DocumentType
	RegNumber    *string
	OwnerEgn     *string
	Attachments  []Attachment
}

type registration struct {
	domain types.RequestDomain
	m      Materializer
}

type Engine struct {
	store   store.Store
	logger  *logrus.Logger
	metrics *metrics.Metrics
	kinds   map[types.RequestKind]registration
	now     func() time.Time
}

type Option func(*Engine)

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(st store.Store, logger *logrus.Logger, m *metrics.Metrics, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		logger:  logger,
		metrics: m,
		kinds:   make(map[types.RequestKind]registration),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register binds materializers to domain. Registering a kind twice panics.
func (e *Engine) Register(domain types.RequestDomain, ms ...Materializer) {
	for _, m := range ms {
		if _, ok := e.kinds[m.Kind()]; ok {
			panic(fmt.Sprintf("lifecycle: kind %s registered twice", m.Kind()))
		}
		e.kinds[m.Kind()] = registration{domain: domain, m: m}
	}
}

func (e *Engine) Store() store.Store {
	return e.store
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) lookup(domain types.RequestDomain, kind types.RequestKind) (Materializer, bool) {
	reg, ok := e.kinds[kind]
	if !ok || reg.domain != domain {
		return nil, false
	}
	return reg.m, true
}

// Submit validates the payload and stores a PENDING request together with
// its request-tagged attachments.
func (e *Engine) Submit(ctx context.Context, sub Submission) (*types.Request, error) {
	m, ok := e.lookup(sub.Domain, sub.Kind)
	if !ok {
		return nil, apperr.Validation("UNSUPPORTED_KIND")
	}
	if sub.Payload == nil {
		return nil, apperr.Validation("PAYLOAD_REQUIRED")
	}
	if err := sub.Payload.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(sub.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", sub.Kind, err)
	}

	now := e.now()
	req := &types.Request{
		ID:           utils.NanoID(),
		Domain:       sub.Domain,
		UserID:       sub.UserID,
		Kind:         sub.Kind,
		Status:       types.RequestStatusPending,
		Payload:      raw,
		TargetID:     sub.TargetID,
		DocumentType: sub.DocumentType,
		RegNumber:    sub.RegNumber,
		OwnerEgn:     sub.OwnerEgn,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = e.store.RunInTx(ctx, func(tx store.Tx) error {
		if err := m.Precheck(ctx, tx, req, sub.Payload); err != nil {
			return err
		}
		if err := tx.Requests().Create(ctx, req); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		for _, a := range sub.Attachments {
			key := filelink.Key{EntityType: sub.Domain.RequestEntityType(), EntityID: req.ID, Tag: a.Tag}
			if _, err := filelink.Retag(ctx, tx.FileLinks(), key, a.FileID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.observeFailure(sub.Domain, err)
		return nil, err
	}

	e.metrics.IncrementSubmitted(string(sub.Domain), string(sub.Kind))
	e.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"domain":     req.Domain,
		"kind":       req.Kind,
		"user_id":    req.UserID,
	}).Info("request submitted")

	return req, nil
}

// Decide moves a PENDING request of domain to a terminal status. Deciding
// a request that already left PENDING is a conflict for every verdict.
func (e *Engine) Decide(ctx context.Context, domain types.RequestDomain, id string, d Decision) (*types.Request, error) {
	var decided *types.Request

	err := e.store.RunInTx(ctx, func(tx store.Tx) error {
		req, err := e.pending(ctx, tx, domain, id)
		if err != nil {
			return err
		}

		switch d.Verdict {
		case types.VerdictReject:
			if err := e.mark(ctx, tx, req, types.RequestStatusRejected, d); err != nil {
				return err
			}
		case types.VerdictApprove:
			if err := e.approve(ctx, tx, req, d); err != nil {
				return err
			}
		default:
			return apperr.Validation("VERDICT_INVALID")
		}

		decided, err = tx.Requests().Request(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to reload request: %w", err)
		}
		return nil
	})
	if err != nil {
		e.observeFailure(domain, err)
		return nil, err
	}

	e.metrics.IncrementDecided(string(domain), string(decided.Kind), string(d.Verdict))
	e.logger.WithFields(logrus.Fields{
		"request_id": decided.ID,
		"domain":     domain,
		"kind":       decided.Kind,
		"verdict":    d.Verdict,
		"admin_id":   d.AdminID,
	}).Info("request decided")

	return decided, nil
}

// pending loads a request of domain under lock and fails unless it is
// still PENDING.
func (e *Engine) pending(ctx context.Context, tx store.Tx, domain types.RequestDomain, id string) (*types.Request, error) {
	req, err := load(ctx, tx.Requests().RequestForUpdate, domain, id)
	if err != nil {
		return nil, err
	}
	if !req.Pending() {
		return nil, apperr.Conflict(domain.AlreadyDecidedCode())
	}
	return req, nil
}

func (e *Engine) approve(ctx context.Context, tx store.Tx, req *types.Request, d Decision) error {
	m, ok := e.lookup(req.Domain, req.Kind)
	if !ok {
		return apperr.Validation("UNSUPPORTED_KIND")
	}

	p, err := m.Decode(req.Payload)
	if err != nil {
		return err
	}

	var res Resolution
	if m.DecideFirst() {
		if err := e.mark(ctx, tx, req, types.RequestStatusApproved, d); err != nil {
			return err
		}
		if res, err = m.Apply(ctx, tx, req, p, d); err != nil {
			return err
		}
	} else {
		if res, err = m.Apply(ctx, tx, req, p, d); err != nil {
			return err
		}
		if err := e.mark(ctx, tx, req, types.RequestStatusApproved, d); err != nil {
			return err
		}
	}

	if res.empty() {
		return nil
	}

	target := res.TargetID
	if res.Clear {
		target = nil
	}
	if err := tx.Requests().SetTarget(ctx, req.ID, target, e.now()); err != nil {
		return fmt.Errorf("failed to resolve request target: %w", err)
	}
	return nil
}

// mark performs the conditional status write. Losing the race to another
// decider surfaces as the domain's already-decided conflict.
func (e *Engine) mark(ctx context.Context, tx store.Tx, req *types.Request, status types.RequestStatus, d Decision) error {
	changed, err := tx.Requests().Decide(ctx, store.Decision{
		RequestID: req.ID,
		Status:    status,
		AdminID:   d.AdminID,
		Note:      d.Note,
		At:        e.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to decide request: %w", err)
	}
	if !changed {
		return apperr.Conflict(req.Domain.AlreadyDecidedCode())
	}
	return nil
}

// Check loads a request of domain and verifies it can still be decided,
// without deciding it.
func (e *Engine) Check(ctx context.Context, domain types.RequestDomain, id string) (*types.Request, error) {
	req, err := e.Get(ctx, domain, id)
	if err != nil {
		return nil, err
	}
	if !req.Pending() {
		return nil, apperr.Conflict(domain.AlreadyDecidedCode())
	}
	return req, nil
}

func (e *Engine) observeFailure(domain types.RequestDomain, err error) {
	if apperr.KindOf(err) == apperr.KindConflict {
		code := apperr.CodeOf(err)
		e.metrics.IncrementConflict(string(domain), code)
		e.logger.WithFields(logrus.Fields{
			"domain": domain,
			"code":   code,
		}).Warn("request conflict")
	}
}
