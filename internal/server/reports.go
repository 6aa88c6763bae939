package server

import (
	"context"
	"net/http"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/reports"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) reportRoutes(r *flow.Mux) {
	s.route(r, "/api/reports", s.handleMyReports, http.MethodGet)
	s.route(r, "/api/reports", s.handleCreateReport, http.MethodPost)
	s.route(r, "/api/reports/:id", s.handleMyReport, http.MethodGet)
}

func (s *Service) handleMyReports(w http.ResponseWriter, r *http.Request) {
	rs, err := s.Reports.MyReports(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Service) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in reports.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, err := s.Reports.Create(r.Context(), currentUser(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Service) handleMyReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Reports.MyReport(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Service) handleAdminListReports(w http.ResponseWriter, r *http.Request) {
	rs, err := s.Reports.AdminList(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Service) handleAdminGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Reports.AdminGet(r.Context(), param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Service) handleAdminResolveReport(w http.ResponseWriter, r *http.Request) {
	s.decideReport(w, r, s.Reports.Resolve)
}

func (s *Service) handleAdminRejectReport(w http.ResponseWriter, r *http.Request) {
	s.decideReport(w, r, s.Reports.Reject)
}

func (s *Service) decideReport(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, reportID, adminID, note string) (*types.ProblemReport, error)) {
	note, err := decisionNote(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, err := decide(r.Context(), param(r, "id"), currentAdmin(r).ID, note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
