package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/documents"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/files"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/health"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/lifecycle"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/metrics"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/property"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/reports"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store/memstore"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/transport"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	userEgn       = "8001010000"
	userPassword  = "citizen-pass"
	adminUsername = "admin"
	adminPassword = "admin-pass"
)

type ServerSuite struct {
	suite.Suite
	ctx   context.Context
	store *memstore.Store
	api   *Service
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	disk, err := files.NewDiskStore(s.T().TempDir())
	s.Require().NoError(err)
	fileService := files.NewService(s.store, disk, logger)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	engine := lifecycle.New(s.store, logger, m)

	s.api = New(&types.Config{ServerPort: 0}, logger, s.store, Services{
		Documents: documents.NewService(engine, fileService, logger),
		Property:  property.NewService(engine, fileService, logger),
		Transport: transport.NewService(engine, fileService, logger),
		Health:    health.NewService(engine, fileService, nil, logger),
		Reports:   reports.NewService(s.store, logger, m),
	}, m, reg)

	now := time.Now().UTC()
	userHash, err := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Users().Create(s.ctx, &types.User{
		ID:           "user-1",
		FullName:     "Иван Иванов",
		Egn:          userEgn,
		PasswordHash: string(userHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Admins().Upsert(s.ctx, &types.Admin{
		ID:           "admin-1",
		Username:     adminUsername,
		PasswordHash: string(adminHash),
		Active:       true,
		CreatedAt:    now,
	}))
}

func (s *ServerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.api.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) asUser(req *http.Request) *http.Request {
	req.SetBasicAuth(userEgn, userPassword)
	return req
}

func (s *ServerSuite) asAdmin(req *http.Request) *http.Request {
	req.SetBasicAuth(adminUsername, adminPassword)
	return req
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(target string, fields map[string]string, fileField, fileName, contentType string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		h.Set("Content-Type", contentType)
		part, _ := mw.CreatePart(h)
		_, _ = part.Write(content)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *ServerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body errorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func (s *ServerSuite) TestHealthzAndRequestID() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("ok", rec.Body.String())
	s.NotEmpty(rec.Header().Get(headerRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "trace-123")
	rec = s.do(req)
	s.Equal("trace-123", rec.Header().Get(headerRequestID))
}

func (s *ServerSuite) TestUnknownRouteIsJSON() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.errorCode(rec))
}

func (s *ServerSuite) TestAuthentication() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.SetBasicAuth(userEgn, "wrong")
	s.Equal(http.StatusUnauthorized, s.do(req).Code)

	rec = s.do(s.asUser(httptest.NewRequest(http.MethodGet, "/api/users/me", nil)))
	s.Require().Equal(http.StatusOK, rec.Code)
	var me types.User
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &me))
	s.Equal("user-1", me.ID)
	s.NotContains(rec.Body.String(), "password")

	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.SetBasicAuth(userEgn, userPassword)
	s.Equal(http.StatusUnauthorized, s.do(req).Code, "citizens are not admins")

	s.Equal(http.StatusOK, s.do(s.asAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))).Code)
}

func (s *ServerSuite) TestInactiveAdminIsRejected() {
	admin, err := s.store.Admins().AdminByUsername(s.ctx, adminUsername)
	s.Require().NoError(err)
	admin.Active = false
	s.Require().NoError(s.store.Admins().Upsert(s.ctx, admin))

	s.Equal(http.StatusUnauthorized, s.do(s.asAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))).Code)
}

func (s *ServerSuite) TestRegister() {
	body := map[string]string{
		"fullName": "  Мария   Петрова ",
		"egn":      "9002020000",
		"dob":      "1990-02-02",
		"password": "long-enough",
	}
	rec := s.do(jsonRequest(http.MethodPost, "/api/auth/register", body))
	s.Require().Equal(http.StatusCreated, rec.Code)

	var u types.User
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &u))
	s.Equal("Мария Петрова", u.FullName)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.SetBasicAuth("9002020000", "long-enough")
	s.Equal(http.StatusOK, s.do(req).Code)

	rec = s.do(jsonRequest(http.MethodPost, "/api/auth/register", body))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("USER_ALREADY_EXISTS", s.errorCode(rec))

	body["egn"] = "12"
	rec = s.do(jsonRequest(http.MethodPost, "/api/auth/register", body))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("EGN_INVALID", s.errorCode(rec))

	rec = s.do(httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{")))
	s.Equal("INVALID_JSON", s.errorCode(rec))
}

func (s *ServerSuite) TestPropertyRequestOverHTTP() {
	fields := map[string]string{
		"type":         "Апартамент",
		"oblast":       "София",
		"place":        "София",
		"address":      "ул. Витоша 1",
		"areaSqm":      "80",
		"purchaseYear": "2015",
	}

	rec := s.do(s.asUser(multipartRequest("/api/property/requests", fields, "", "", "", nil)))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("OWNERSHIP_DOC_REQUIRED", s.errorCode(rec))

	rec = s.do(s.asUser(multipartRequest("/api/property/requests", fields, "ownershipDoc", "deed.pdf", "application/pdf", []byte("%PDF-1.7\n"))))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var req types.Request
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &req))
	s.Equal(types.RequestStatusPending, req.Status)

	rec = s.do(s.asUser(httptest.NewRequest(http.MethodGet, "/api/property/requests/"+req.ID, nil)))
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(s.asAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/property/requests/"+req.ID+"/files/ownership_doc", nil)))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.Equal("%PDF-1.7\n", rec.Body.String())

	rec = s.do(s.asAdmin(jsonRequest(http.MethodPost, "/api/admin/property/requests/"+req.ID+"/approve", map[string]string{"note": "ok"})))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &req))
	s.Equal(types.RequestStatusApproved, req.Status)
	s.Equal("ok", req.AdminNote)

	rec = s.do(s.asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/property/requests/"+req.ID+"/reject", nil)))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("REQUEST_ALREADY_DECIDED", s.errorCode(rec))

	rec = s.do(s.asUser(httptest.NewRequest(http.MethodGet, "/api/property/", nil)))
	s.Require().Equal(http.StatusOK, rec.Code)
	var props []types.Property
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &props))
	s.Len(props, 1)
}

func (s *ServerSuite) TestAdminListStatusFilter() {
	rec := s.do(s.asAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/health/requests?status=bogus", nil)))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("STATUS_INVALID", s.errorCode(rec))

	rec = s.do(s.asAdmin(httptest.NewRequest(http.MethodGet, "/api/admin/documents/requests", nil)))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq("[]", rec.Body.String())
}

func (s *ServerSuite) TestReportsOverHTTP() {
	rec := s.do(s.asUser(jsonRequest(http.MethodPost, "/api/reports", map[string]string{"category": "utilities", "description": "Няма вода от два дни"})))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var rep types.ProblemReport
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rep))
	s.Equal(userEgn, rep.UserEgn)

	rec = s.do(s.asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/reports/"+rep.ID+"/resolve?note=done", nil)))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rep))
	s.Equal(types.ReportStatusResolved, rep.Status)

	rec = s.do(s.asAdmin(httptest.NewRequest(http.MethodPost, "/api/admin/reports/"+rep.ID+"/reject", nil)))
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("REPORT_ALREADY_DECIDED", s.errorCode(rec))

	rec = s.do(s.asUser(httptest.NewRequest(http.MethodGet, "/api/reports/"+rep.ID, nil)))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestDoctorRegistryIsPublic() {
	rec := s.do(s.asAdmin(jsonRequest(http.MethodPost, "/api/admin/health/doctors", map[string]any{
		"firstName":      "Мария",
		"lastName":       "Петрова",
		"practiceNumber": "2201123456",
		"rzokNo":         "22",
		"healthRegion":   "София-град",
		"mobile":         "0888123456",
		"oblast":         "София",
		"city":           "София",
		"street":         "ул. Пиротска 5",
	})))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/health/doctors", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	var ds []types.HealthDoctor
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &ds))
	s.Len(ds, 1)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/health/doctors/2201123456/busy-slots?date=2026-05-10", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq("[]", rec.Body.String())

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/health/doctors/2201123456", nil))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var d types.HealthDoctor
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &d))
	s.Equal("2201123456", d.PracticeNumber)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/health/doctors/9999999999", nil))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("DOCTOR_NOT_FOUND", s.errorCode(rec))
}

func (s *ServerSuite) TestMetricsEndpoint() {
	s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `egov_http_request_duration_seconds_count{method="GET",route="/healthz",status="200"} 1`)
}
