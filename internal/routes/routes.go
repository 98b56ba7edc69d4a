package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davmoren/credverify/internal/credservice"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/models/dto"

	structValidator "github.com/go-playground/validator/v10"
)

type Route struct {
	Metrics   interfaces.Metrics
	Verifier  interfaces.CredentialVerifier
	CredRepo  interfaces.CredentialRepository
	Logger    interfaces.Logger
	validator *structValidator.Validate
}

// NewRoute creates a new Route instance.
func NewRoute(metrics interfaces.Metrics, verifier interfaces.CredentialVerifier,
	credRepo interfaces.CredentialRepository, logger interfaces.Logger,
	validator *structValidator.Validate,
) *Route {

	return &Route{
		Metrics:   metrics,
		Verifier:  verifier,
		CredRepo:  credRepo,
		Logger:    logger,
		validator: validator,
	}
}

// Login handles credential verification requests. Exactly one of three
// terminal responses is written per request: the matching records (200), a
// generic rejection (401), or an opaque server error (500). Client errors
// (405, 400) short-circuit before the store is touched.
func (r *Route) Login(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.errorResponse(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", req.Method), ErrMethodNotAllowed)
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounter(LoginRequestsTotal)
	}

	if req.Header.Get(ContentType) != ContentTypeJson {
		r.errorResponse(w, http.StatusBadRequest, fmt.Errorf("invalid content-type: %s", req.Header.Get(ContentType)), ErrInvalidContentType)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginErrorsTotal)
		}
		return
	}

	loginRequest := &dto.LoginRequestDTO{}
	err := json.NewDecoder(req.Body).Decode(loginRequest)
	if err != nil {
		r.errorResponse(w, http.StatusBadRequest, err, ErrInvalidRequestBody)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginErrorsTotal)
		}
		return
	}

	// Explicit presence check ahead of the store call: an absent field is a
	// client error, not a lookup failure.
	if err := r.validator.Struct(loginRequest); err != nil {
		errors := err.(structValidator.ValidationErrors)
		r.errorResponse(w, http.StatusBadRequest, fmt.Errorf("invalid login data: %s", errors), ErrValidationFailed)
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginErrorsTotal)
		}
		return
	}

	var startTime time.Time
	if r.Metrics != nil {
		startTime = time.Now()
	}

	creds, err := r.Verifier.Verify(req.Context(), loginRequest.Username, loginRequest.Password)

	if r.Metrics != nil {
		duration := time.Since(startTime).Seconds()
		r.Metrics.ObserveHistogram(LoginDurationSeconds, duration)
	}

	if err != nil {
		if errors.Is(err, credservice.ErrNoMatch) {
			// Identical body for unknown username and wrong password.
			w.Header().Set(ContentType, ContentTypeJson)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(&dto.RejectedResponseDTO{Mensaje: MsgInvalidLogin})
			if r.Metrics != nil {
				r.Metrics.IncCounter(LoginFailedTotal)
			}
			return
		}

		// Store failure: the cause was already logged by the service; the
		// client only ever sees the fixed opaque message.
		w.Header().Set(ContentType, ContentTypeJson)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(&dto.UnavailableResponseDTO{Error: MsgQueryError})
		if r.Metrics != nil {
			r.Metrics.IncCounter(LoginErrorsTotal)
		}
		return
	}

	if r.Metrics != nil {
		r.Metrics.IncCounter(LoginSuccessTotal)
	}

	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(creds); err != nil {
		r.Logger.Error(ErrFailedToEncodeResponse, "error", err)
	}
}

// Greeting handles the root route.
func (r *Route) Greeting(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != RootRouteAPI {
		http.NotFound(w, req)
		return
	}

	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(&dto.GreetingResponseDTO{Message: MsgGreeting})
}

// Health reports liveness and store reachability.
func (r *Route) Health(w http.ResponseWriter, req *http.Request) {
	w.Header().Set(ContentType, ContentTypeJson)

	if r.CredRepo != nil {
		if err := r.CredRepo.Ping(req.Context()); err != nil {
			r.Logger.Error("Credential store ping failed", "error", err)
			if r.Metrics != nil {
				r.Metrics.SetGauge(StoreUp, 0)
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(&dto.HealthResponseDTO{Status: MsgUnhealthy})
			return
		}
		if r.Metrics != nil {
			r.Metrics.SetGauge(StoreUp, 1)
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(&dto.HealthResponseDTO{Status: MsgHealthy})
}

func (r *Route) errorResponse(w http.ResponseWriter, statusCode int, err error, message string) {
	w.Header().Set(ContentType, ContentTypeJson)
	w.WriteHeader(statusCode)
	jsonResponse := map[string]string{
		"error":   err.Error(),
		"mensaje": message,
	}
	_ = json.NewEncoder(w).Encode(jsonResponse)
}
