package server

import (
	"net/http"
	"strconv"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/property"

	"github.com/alexedwards/flow"
)

func (s *Service) propertyRoutes(r *flow.Mux) {
	s.userRequestRoutes(r, "/api/property", s.Property.MyRequests, s.Property.MyRequest, s.Property.RequestFile)
	s.route(r, "/api/property/requests", s.handleSubmitProperty, http.MethodPost)
	s.route(r, "/api/property/requests/remove", s.handleSubmitPropertyRemoval, http.MethodPost)
	s.route(r, "/api/property/requests/tax", s.handleSubmitTaxAssessment, http.MethodPost)
	s.route(r, "/api/property/requests/sketch", s.handleSubmitSketch, http.MethodPost)

	s.route(r, "/api/property", s.handleMyProperties, http.MethodGet)
	s.route(r, "/api/property/:id", s.handleMyProperty, http.MethodGet)
	s.route(r, "/api/property/:id/tax-assessment", s.handleMyTaxAssessment, http.MethodGet)
	s.route(r, "/api/property/:id/sketch", s.handleMySketch, http.MethodGet)
	s.route(r, "/api/property/:id/files/:tag", s.handlePropertyFile, http.MethodGet)
	s.route(r, "/api/property/:id/debts", s.handleDebts, http.MethodGet)
	s.route(r, "/api/property/:id/debts/:year/pay", s.handlePayDebt, http.MethodPost)
}

func (s *Service) handleSubmitProperty(w http.ResponseWriter, r *http.Request) {
	var in property.AddInput
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := upload(r, "ownershipDoc")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(doc)

	req, err := s.Property.SubmitAdd(r.Context(), currentUser(r).ID, in, doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleSubmitPropertyRemoval(w http.ResponseWriter, r *http.Request) {
	var in removalInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := s.Property.SubmitRemove(r.Context(), currentUser(r).ID, in.ID, in.Reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleSubmitTaxAssessment(w http.ResponseWriter, r *http.Request) {
	var in property.TaxInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := s.Property.SubmitTaxAssessment(r.Context(), currentUser(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleSubmitSketch(w http.ResponseWriter, r *http.Request) {
	var in property.SketchInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := s.Property.SubmitSketch(r.Context(), currentUser(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleAdminApproveSketch(w http.ResponseWriter, r *http.Request) {
	var in noteInput
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	pdf, err := upload(r, "sketchPdf")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(pdf)

	var note string
	if in.Note != nil {
		note = *in.Note
	}

	req, err := s.Property.ApproveSketch(r.Context(), param(r, "id"), currentAdmin(r).ID, note, pdf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Service) handleMyProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.Property.MyActiveProperties(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func (s *Service) handleMyProperty(w http.ResponseWriter, r *http.Request) {
	prop, err := s.Property.MyProperty(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

func (s *Service) handleMyTaxAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.Property.MyTaxAssessment(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleMySketch(w http.ResponseWriter, r *http.Request) {
	sk, err := s.Property.MySketch(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

func (s *Service) handlePropertyFile(w http.ResponseWriter, r *http.Request) {
	file, rc, err := s.Property.PropertyFile(r.Context(), currentUser(r).ID, param(r, "id"), tagParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveFile(w, r, file, rc)
}

func (s *Service) handleDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.Property.Debts(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

type payDebtInput struct {
	Kind string `json:"kind"`
}

func (s *Service) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(param(r, "year"))
	if err != nil {
		s.writeError(w, r, apperr.Validation("YEAR_INVALID"))
		return
	}

	var in payDebtInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	debt, err := s.Property.PayDebt(r.Context(), currentUser(r).ID, param(r, "id"), year, in.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}
