package server

import (
	"net/http"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/documents"

	"github.com/alexedwards/flow"
)

func (s *Service) documentRoutes(r *flow.Mux) {
	s.userRequestRoutes(r, "/api/documents", s.Documents.MyRequests, s.Documents.MyRequest, s.Documents.RequestFile)
	s.route(r, "/api/documents/requests", s.handleSubmitDocument, http.MethodPost)
	s.route(r, "/api/documents/requests/remove", s.handleSubmitDocumentRemoval, http.MethodPost)

	s.route(r, "/api/documents", s.handleMyDocuments, http.MethodGet)
	s.route(r, "/api/documents/:id", s.handleMyDocument, http.MethodGet)
	s.route(r, "/api/documents/:id/files/:tag", s.handleDocumentFile, http.MethodGet)
}

func (s *Service) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	var in documents.AddInput
	if err := decodeForm(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	photos, err := uploads(r, "photo1", "photo2")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeUploads(photos...)

	user := currentUser(r)
	req, err := s.Documents.SubmitAdd(r.Context(), user.ID, user.Egn, in, photos[0], photos[1])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type removalInput struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func (s *Service) handleSubmitDocumentRemoval(w http.ResponseWriter, r *http.Request) {
	var in removalInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := s.Documents.SubmitRemove(r.Context(), currentUser(r).ID, in.ID, in.Reason)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Service) handleMyDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Documents.MyDocuments(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Service) handleMyDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Documents.MyDocument(r.Context(), currentUser(r).ID, param(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Service) handleDocumentFile(w http.ResponseWriter, r *http.Request) {
	file, rc, err := s.Documents.DocumentFile(r.Context(), currentUser(r).ID, param(r, "id"), tagParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveFile(w, r, file, rc)
}
