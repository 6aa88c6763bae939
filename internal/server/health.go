package server

import (
	"encoding/json"
	"net/http"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/health"

	"github.com/alexedwards/flow"
)

func (s *Service) healthRoutes(r *flow.Mux) {
	s.route(r, "/api/health/profile", s.handleHealthProfile, http.MethodGet)

	s.userRequestRoutes(r, "/api/health", s.Health.MyRequests, s.Health.MyRequest, s.Health.RequestFile)
	s.route(r, "/api/health/requests/doctor", s.handleSubmitDoctor, http.MethodPost)
	s.route(r, "/api/health/requests/doctor/remove", s.handleSubmitDoctorRemoval, http.MethodPost)
	s.route(r, "/api/health/requests/referral", s.handleSubmitReferral, http.MethodPost)

	s.route(r, "/api/health/referrals", s.handleMyReferrals, http.MethodGet)
	s.route(r, "/api/health/referrals/:id", s.handleMyReferral, http.MethodGet)
	s.route(r, "/api/health/referrals/:id/file", s.handleReferralFile, http.MethodGet)

	s.route(r, "/api/health/appointments", s.handleMyAppointments, http.MethodGet)
	s.route(r, "/api/health/appointments", s.handleBookAppointment, http.MethodPost)
}

func (s *Service) handleListDoctors(w http.ResponseWriter, r *http.Request) {
	ds, err := s.Health.ListDoctors(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Service) handleGetDoctor(w http.ResponseWriter, r *http.Request) {
	d, err := s.Health.DoctorByPracticeNumber(r.Context(), param(r, "practiceNumber"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Service) handleBusySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.Health.BusySlots(r.Context(), param(r, "practiceNumber"), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (s *Service) handleHealthProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.Health.Profile(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type doctorRequestForm struct {
	PracticeNumber string `form:"practiceNumber"`
	// Doctor is a JSON snapshot of the registry entry.
	Doctor string `form:"doctor"`
}

func (s *Service) handleSubmitDoctor(w http.ResponseWriter, r *http.Request) {
	var in doctorRequestForm
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	booklet, err := upload(r, "booklet")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(booklet)

	input := health.AddDoctorInput{PracticeNumber: in.PracticeNumber}
	if in.Doctor != "" && json.Valid([]byte(in.Doctor)) {
		input.Doctor = json.RawMessage(in.Doctor)
	}

	req, err := s.Health.SubmitAddDoctor(r.Context(), currentUser(r).ID, input, booklet)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleSubmitDoctorRemoval(w http.ResponseWriter, r *http.Request) {
	req, err := s.Health.SubmitRemoveDoctor(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type referralForm struct {
	Title string `form:"title"`
}

func (s *Service) handleSubmitReferral(w http.ResponseWriter, r *http.Request) {
	var in referralForm
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	pdf, err := upload(r, "referral")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(pdf)

	req, err := s.Health.SubmitReferral(r.Context(), currentUser(r).ID, in.Title, pdf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleMyReferrals(w http.ResponseWriter, r *http.Request) {
	refs, err := s.Health.MyReferrals(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (s *Service) handleMyReferral(w http.ResponseWriter, r *http.Request) {
	ref, err := s.Health.MyReferral(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Service) handleReferralFile(w http.ResponseWriter, r *http.Request) {
	file, rc, err := s.Health.ReferralFile(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveFile(w, r, file, rc)
}

func (s *Service) handleMyAppointments(w http.ResponseWriter, r *http.Request) {
	as, err := s.Health.MyAppointments(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, as)
}

func (s *Service) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	var in health.AppointmentInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.Health.BookAppointment(r.Context(), currentUser(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Service) handleAdminCreateDoctor(w http.ResponseWriter, r *http.Request) {
	var in health.DoctorInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.Health.CreateDoctor(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Service) handleAdminDeleteDoctor(w http.ResponseWriter, r *http.Request) {
	if err := s.Health.DeleteDoctor(r.Context(), param(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
