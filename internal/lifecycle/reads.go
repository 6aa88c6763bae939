package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"
)

func load(ctx context.Context, fetch func(context.Context, string) (*types.Request, error), domain types.RequestDomain, id string) (*types.Request, error) {
	req, err := fetch(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrRequestNotFound) {
			return nil, apperr.NotFound("REQUEST_NOT_FOUND")
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req.Domain != domain {
		return nil, apperr.NotFound("REQUEST_NOT_FOUND")
	}
	return req, nil
}

// Get loads any request of domain.
func (e *Engine) Get(ctx context.Context, domain types.RequestDomain, id string) (*types.Request, error) {
	return load(ctx, e.store.Requests().Request, domain, id)
}

// Owned loads a request of domain submitted by userID. Requests of other
// users are reported as missing.
func (e *Engine) Owned(ctx context.Context, domain types.RequestDomain, userID, id string) (*types.Request, error) {
	req, err := e.Get(ctx, domain, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, apperr.NotFound("REQUEST_NOT_FOUND")
	}
	return req, nil
}

// ByUser lists the requests a user submitted in domain, newest first.
func (e *Engine) ByUser(ctx context.Context, domain types.RequestDomain, userID string) ([]*types.Request, error) {
	reqs, err := e.store.Requests().Requests(ctx, store.RequestFilter{Domain: domain, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// List returns the requests of domain, newest first, optionally narrowed
// to one status and with one status left out.
func (e *Engine) List(ctx context.Context, domain types.RequestDomain, status, exclude types.RequestStatus) ([]*types.Request, error) {
	reqs, err := e.store.Requests().Requests(ctx, store.RequestFilter{Domain: domain, Status: status, ExcludeStatus: exclude})
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// ParseStatus maps an optional admin filter value to a status. Blank and
// ALL mean no filter.
func ParseStatus(raw string) (types.RequestStatus, error) {
	switch s := types.RequestStatus(normalizeUpper(raw)); s {
	case "", "ALL":
		return "", nil
	case types.RequestStatusPending, types.RequestStatusApproved, types.RequestStatusRejected:
		return s, nil
	}
	return "", apperr.Validation("STATUS_INVALID")
}
