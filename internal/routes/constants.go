package routes

var (
	LoginDurationSecondsBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10}
)

const (
	// API route constants
	RootRouteAPI    = "/"
	HealthRouteAPI  = "/healthz"
	MetricsRouteAPI = "/metrics"
	LoginRouteAPI   = "/login"

	// Content-Type constants
	ContentType     = "Content-Type"
	ContentTypeJson = "application/json"

	// message constants
	MsgGreeting     = "hello friend"
	MsgHealthy      = "ok"
	MsgUnhealthy    = "unavailable"
	MsgInvalidLogin = "usuario o contraseña incorrecta"
	MsgQueryError   = "error en la consulta"
	MsgRateLimited  = "Too many requests. Please try again later."

	// Error messages
	ErrMethodNotAllowed       = "method not allowed"
	ErrInvalidContentType     = "content-Type must be application/json"
	ErrInvalidRequestBody     = "invalid request body"
	ErrValidationFailed       = "login data validation failed"
	ErrFailedToEncodeResponse = "failed to encode response"

	// metrics constants
	LoginRequestsTotal        = "login_requests_total"
	LoginRequestsTotalHelp    = "Total number of login requests received"
	LoginSuccessTotal         = "login_success_total"
	LoginSuccessTotalHelp     = "Total number of successful login requests"
	LoginFailedTotal          = "login_failed_total"
	LoginFailedTotalHelp      = "Total number of rejected login requests"
	LoginErrorsTotal          = "login_errors_total"
	LoginErrorsTotalHelp      = "Total number of login requests that failed on the server side"
	LoginDurationSeconds      = "login_duration_seconds"
	LoginDurationSecondsHelp  = "Duration of login requests in seconds"
	LoginRateLimitedTotal     = "login_rate_limited_total"
	LoginRateLimitedTotalHelp = "Total number of login requests that were rate limited"
	StoreUp                   = "credential_store_up"
	StoreUpHelp               = "Whether the last credential store health check succeeded (1) or failed (0)"
)
