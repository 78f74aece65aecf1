package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darmiel/attrgate/internal/api/middleware"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/engine"
	"github.com/darmiel/attrgate/internal/service"
	"github.com/darmiel/attrgate/internal/tasks"
)

type Server struct {
	login       *service.LoginService
	sessions    *service.SessionIssuer
	registry    *engine.Registry
	taskManager *tasks.Manager
	auditor     core.QueryableAuditor
	gatherer    prometheus.Gatherer
}

// NewServer wires the HTTP handlers. auditor may be nil if audit entries are not kept,
// sessions may be nil if admin logins are disabled.
func NewServer(
	login *service.LoginService,
	sessions *service.SessionIssuer,
	registry *engine.Registry,
	taskManager *tasks.Manager,
	auditor core.QueryableAuditor,
	gatherer prometheus.Gatherer,
) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if taskManager == nil {
		taskManager = tasks.NewManager()
	}
	return &Server{
		login:       login,
		sessions:    sessions,
		registry:    registry,
		taskManager: taskManager,
		auditor:     auditor,
		gatherer:    gatherer,
	}
}

func (s *Server) Routes(signingKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)
	mux.Handle("GET "+MetricsRoute, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET "+AuthenticatorsRoute, s.handleListAuthenticators)

	mux.HandleFunc("POST "+LoginRoute, s.handleLogin)
	mux.HandleFunc("POST "+SessionRoute, s.handleSession)

	// admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
	adminMux.HandleFunc("POST "+ExplainRoute, s.handleExplain)
	adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.Handle(AdminParent, middleware.AdminAuth(signingKey)(adminMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
