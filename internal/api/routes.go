package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"
	MetricsRoute     = "/metrics"

	AuthenticatorsRoute = "/v1/authenticators"
	LoginRoute          = "/v1/login"
	SessionRoute        = "/v1/session"

	AdminParent      = "/v1/admin/"
	ListAuditsRoute  = AdminParent + "audit"
	ExplainRoute     = AdminParent + "explain"
	ListTasksRoute   = AdminParent + "tasks"
	TriggerTaskRoute = AdminParent + "tasks/{name}/trigger"
	LogsForTaskRoute = AdminParent + "tasks/{name}/logs"
)
