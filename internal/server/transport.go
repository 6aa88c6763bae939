package server

import (
	"net/http"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/transport"

	"github.com/alexedwards/flow"
)

func (s *Service) transportRoutes(r *flow.Mux) {
	s.userRequestRoutes(r, "/api/transport", s.Transport.MyRequests, s.Transport.MyRequest, s.Transport.RequestFile)
	s.route(r, "/api/transport/requests", s.handleSubmitVehicle, http.MethodPost)
	s.route(r, "/api/transport/requests/tech-inspection", s.handleSubmitTechInspection, http.MethodPost)

	s.route(r, "/api/transport/vehicles", s.handleMyVehicles, http.MethodGet)
	s.route(r, "/api/transport/vehicles/:id", s.handleMyVehicle, http.MethodGet)
	s.route(r, "/api/transport/vehicles/:id/files/:tag", s.handleVehicleFile, http.MethodGet)
	s.route(r, "/api/transport/vehicles/:id/tax", s.handleTaxQuote, http.MethodGet)
	s.route(r, "/api/transport/vehicles/:id/tax/payments", s.handleTaxPayments, http.MethodGet)
	s.route(r, "/api/transport/vehicles/:id/tax/pay", s.handlePayTax, http.MethodPost)

	s.route(r, "/api/transport/vignettes", s.handleMyVignettes, http.MethodGet)
	s.route(r, "/api/transport/vignettes", s.handlePurchaseVignette, http.MethodPost)

	s.route(r, "/api/transport/fines", s.handleMyFines, http.MethodGet)
	s.route(r, "/api/transport/fines/:id/pay", s.handlePayFine, http.MethodPost)
}

func (s *Service) handleSubmitVehicle(w http.ResponseWriter, r *http.Request) {
	var in transport.AddVehicleInput
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := upload(r, "registrationDoc")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(doc)

	user := currentUser(r)
	req, err := s.Transport.SubmitAddVehicle(r.Context(), user.ID, user.Egn, in, doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleSubmitTechInspection(w http.ResponseWriter, r *http.Request) {
	var in transport.TechInput
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := upload(r, "inspectionDoc")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(doc)

	user := currentUser(r)
	req, err := s.Transport.SubmitTechInspection(r.Context(), user.ID, user.Egn, in, doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleMyVehicles(w http.ResponseWriter, r *http.Request) {
	vs, err := s.Transport.MyVehicles(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (s *Service) handleMyVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := s.Transport.MyVehicle(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleVehicleFile(w http.ResponseWriter, r *http.Request) {
	file, rc, err := s.Transport.VehicleFile(r.Context(), currentUser(r).ID, param(r, "id"), tagParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveFile(w, r, file, rc)
}

func (s *Service) handleTaxQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.Transport.AnnualTaxQuote(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Service) handleTaxPayments(w http.ResponseWriter, r *http.Request) {
	ps, err := s.Transport.TaxPayments(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

type payTaxInput struct {
	Year *int `json:"year"`
}

func (s *Service) handlePayTax(w http.ResponseWriter, r *http.Request) {
	var in payTaxInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.Transport.PayAnnualTax(r.Context(), currentUser(r).ID, param(r, "id"), in.Year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Service) handleMyVignettes(w http.ResponseWriter, r *http.Request) {
	vs, err := s.Transport.MyVignettes(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vs)
}

func (s *Service) handlePurchaseVignette(w http.ResponseWriter, r *http.Request) {
	var in transport.VignetteInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	user := currentUser(r)
	v, err := s.Transport.PurchaseVignette(r.Context(), user.ID, user.Egn, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Service) handleMyFines(w http.ResponseWriter, r *http.Request) {
	fs, err := s.Transport.MyFines(r.Context(), currentUser(r).Egn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

func (s *Service) handlePayFine(w http.ResponseWriter, r *http.Request) {
	f, err := s.Transport.PayFine(r.Context(), currentUser(r).Egn, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Service) handleAdminListFines(w http.ResponseWriter, r *http.Request) {
	fs, err := s.Transport.AdminListFines(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fs)
}

func (s *Service) handleAdminCreateFine(w http.ResponseWriter, r *http.Request) {
	var in transport.FineInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := s.Transport.AdminCreateFine(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}
