package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/documents"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/health"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/metrics"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/property"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/reports"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/store"
	"github.com/AlexanderGeorgiev0105/egov-portal/internal/transport"
	"github.com/AlexanderGeorgiev0105/egov-portal/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Services are the domain services exposed over HTTP.
type Services struct {
	Documents *documents.Service
	Property  *property.Service
	Transport *transport.Service
	Health    *health.Service
	Reports   *reports.Service
}

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	store    store.Store
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	Services

	handler http.Handler
	server  *http.Server
}

// New builds the API. A nil gatherer leaves /metrics unmounted.
func New(
	config *types.Config,
	logger *logrus.Logger,
	st store.Store,
	services Services,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *Service {
	mux := flow.New()
	mux.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NOT_FOUND"})
	})
	mux.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "METHOD_NOT_ALLOWED"})
	})

	s := &Service{
		logger:   logger,
		config:   config,
		store:    st,
		metrics:  m,
		gatherer: gatherer,
		Services: services,
	}

	s.buildRouter(mux)

	// flow runs Use middleware after a route matched, so path rewriting
	// and access logging wrap the whole mux.
	s.handler = s.StripTrailingSlash(s.RequestID(s.LoggingMiddleware(mux)))
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP lets the API be mounted without a listener.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// route registers h under pattern and records its latency with the
// pattern as the route label.
func (s *Service) route(r *flow.Mux, pattern string, h http.HandlerFunc, methods ...string) {
	r.Handle(pattern, s.instrument(pattern, h), methods...)
}

func (s *Service) buildRouter(r *flow.Mux) {
	s.route(r, "/healthz", s.handleHealth, http.MethodGet)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}), http.MethodGet)
	}

	s.route(r, "/api/auth/register", s.handleRegister, http.MethodPost)

	s.route(r, "/api/health/doctors", s.handleListDoctors, http.MethodGet)
	s.route(r, "/api/health/doctors/:practiceNumber", s.handleGetDoctor, http.MethodGet)
	s.route(r, "/api/health/doctors/:practiceNumber/busy-slots", s.handleBusySlots, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireUser)

		s.route(r, "/api/users/me", s.handleMe, http.MethodGet)

		s.documentRoutes(r)
		s.propertyRoutes(r)
		s.transportRoutes(r)
		s.healthRoutes(r)
		s.reportRoutes(r)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAdmin)

		s.route(r, "/api/admin/me", s.handleAdminMe, http.MethodGet)

		s.adminRequestRoutes(r, "/api/admin/documents", s.Documents, func(ctx context.Context, _ string) ([]*types.Request, error) {
			return s.Documents.AdminList(ctx)
		})
		s.route(r, "/api/admin/property/requests/:id/approve-sketch", s.handleAdminApproveSketch, http.MethodPost)
		s.adminRequestRoutes(r, "/api/admin/property", s.Property, s.Property.AdminList)
		s.adminRequestRoutes(r, "/api/admin/transport", s.Transport, func(ctx context.Context, _ string) ([]*types.Request, error) {
			return s.Transport.AdminList(ctx)
		})
		s.adminRequestRoutes(r, "/api/admin/health", s.Health, s.Health.AdminList)

		s.route(r, "/api/admin/transport/fines", s.handleAdminListFines, http.MethodGet)
		s.route(r, "/api/admin/transport/fines", s.handleAdminCreateFine, http.MethodPost)

		s.route(r, "/api/admin/health/doctors", s.handleListDoctors, http.MethodGet)
		s.route(r, "/api/admin/health/doctors", s.handleAdminCreateDoctor, http.MethodPost)
		s.route(r, "/api/admin/health/doctors/:id", s.handleAdminDeleteDoctor, http.MethodDelete)

		s.route(r, "/api/admin/reports", s.handleAdminListReports, http.MethodGet)
		s.route(r, "/api/admin/reports/:id", s.handleAdminGetReport, http.MethodGet)
		s.route(r, "/api/admin/reports/:id/resolve", s.handleAdminResolveReport, http.MethodPost)
		s.route(r, "/api/admin/reports/:id/reject", s.handleAdminRejectReport, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
