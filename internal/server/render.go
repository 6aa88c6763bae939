package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/apperr"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxMultipartMemory = 32 << 20

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to its status and stable code. Anything that is not
// an apperr.Error is logged and reported as INTERNAL_ERROR.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestIDFromContext(r.Context()),
		}).Error("request failed")
	}
	writeJSON(w, status, errorBody{Error: apperr.CodeOf(err)})
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("INVALID_JSON")
}

// decodeForm parses a multipart or urlencoded form into dst.
func decodeForm(r *http.Request, dst any) error {
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return apperr.Validation("INVALID_FORM")
		}
	} else if err := r.ParseForm(); err != nil {
		return apperr.Validation("INVALID_FORM")
	}

	if err := decoder.Decode(dst, r.Form); err != nil {
		return apperr.Validation("INVALID_FORM")
	}
	return nil
}

// upload returns the file sent under field, or nil when the field is
// absent. Callers close it with closeUploads.
func upload(r *http.Request, field string) (*files.Upload, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperr.Validation("INVALID_FORM")
	}
	return &files.Upload{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Size:        hdr.Size,
		Body:        f,
	}, nil
}

func uploads(r *http.Request, fields ...string) ([]*files.Upload, error) {
	out := make([]*files.Upload, 0, len(fields))
	for _, field := range fields {
		up, err := upload(r, field)
		if err != nil {
			closeUploads(out...)
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

func closeUploads(ups ...*files.Upload) {
	for _, up := range ups {
		if up == nil {
			continue
		}
		if c, ok := up.Body.(io.Closer); ok {
			_ = c.Close()
		}
	}
}

func (s *Service) serveFile(w http.ResponseWriter, r *http.Request, file *types.AppFile, rc io.ReadCloser) {
	defer rc.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.OriginalName}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		s.logger.WithError(err).WithField("file_id", file.ID).Warn("failed to stream file")
	}
}

func param(r *http.Request, key string) string {
	return strings.TrimSpace(r.PathValue(key))
}

func tagParam(r *http.Request) types.FileTag {
	return types.FileTag(strings.ToUpper(param(r, "tag")))
}

// noteInput is the optional body of approve and reject calls. A note in
// the query string is used when the body has none.
type noteInput struct {
	Note *string `json:"note" form:"note"`
}

func decisionNote(r *http.Request) (string, error) {
	var in noteInput
	if err := decodeJSON(r, &in); err != nil {
		return "", err
	}
	if in.Note != nil {
		return *in.Note, nil
	}
	return r.URL.Query().Get("note"), nil
}
