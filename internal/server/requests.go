package server

import (
	"context"
	"io"
	"net/http"

	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/alexedwards/flow"
)

// requestAdmin is the admin side every domain service offers.
type requestAdmin interface {
	AdminGet(ctx context.Context, requestID string) (*types.Request, error)
	Approve(ctx context.Context, requestID, adminID, note string) (*types.Request, error)
	Reject(ctx context.Context, requestID, adminID, note string) (*types.Request, error)
	RequestFile(ctx context.Context, userID, requestID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error)
}

type listFunc func(ctx context.Context, status string) ([]*types.Request, error)

func (s *Service) adminRequestRoutes(r *flow.Mux, prefix string, svc requestAdmin, list listFunc) {
	s.route(r, prefix+"/requests", func(w http.ResponseWriter, r *http.Request) {
		reqs, err := list(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reqs)
	}, http.MethodGet)

	s.route(r, prefix+"/requests/:id", func(w http.ResponseWriter, r *http.Request) {
		req, err := svc.AdminGet(r.Context(), param(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}, http.MethodGet)

	s.route(r, prefix+"/requests/:id/approve", s.decideHandler(svc.Approve), http.MethodPost, http.MethodPatch)
	s.route(r, prefix+"/requests/:id/reject", s.decideHandler(svc.Reject), http.MethodPost, http.MethodPatch)

	s.route(r, prefix+"/requests/:id/files/:tag", func(w http.ResponseWriter, r *http.Request) {
		file, rc, err := svc.RequestFile(r.Context(), "", param(r, "id"), tagParam(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.serveFile(w, r, file, rc)
	}, http.MethodGet)
}

type decideFunc func(ctx context.Context, requestID, adminID, note string) (*types.Request, error)

func (s *Service) decideHandler(decide decideFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, err := decisionNote(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		req, err := decide(r.Context(), param(r, "id"), currentAdmin(r).ID, note)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

// userRequestRoutes mounts the citizen's request history for a domain.
func (s *Service) userRequestRoutes(r *flow.Mux, prefix string, mine func(ctx context.Context, userID string) ([]*types.Request, error), one func(ctx context.Context, userID, requestID string) (*types.Request, error), file func(ctx context.Context, userID, requestID string, tag types.FileTag) (*types.AppFile, io.ReadCloser, error)) {
	s.route(r, prefix+"/requests", func(w http.ResponseWriter, r *http.Request) {
		reqs, err := mine(r.Context(), currentUser(r).ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reqs)
	}, http.MethodGet)

	s.route(r, prefix+"/requests/:id", func(w http.ResponseWriter, r *http.Request) {
		req, err := one(r.Context(), currentUser(r).ID, param(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	}, http.MethodGet)

	s.route(r, prefix+"/requests/:id/files/:tag", func(w http.ResponseWriter, r *http.Request) {
		f, rc, err := file(r.Context(), currentUser(r).ID, param(r, "id"), tagParam(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.serveFile(w, r, f, rc)
	}, http.MethodGet)
}
