// Package handler provides the backend API's HTTP request handlers.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/innofeed/innofeed/internal/handler/dto"
	"github.com/innofeed/innofeed/internal/metrics"
	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/service"
	"github.com/innofeed/innofeed/internal/validation"
)

// Accounts registers and authenticates users.
type Accounts interface {
	Register(ctx context.Context, input service.RegisterInput) (int64, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
}

// Catalog serves the domain list.
type Catalog interface {
	Domains(ctx context.Context) ([]model.Domain, error)
}

// Feeds builds feeds and stores preferences.
type Feeds interface {
	Feed(ctx context.Context, userID int64) (*service.Feed, error)
	SetPreferences(ctx context.Context, userID int64, domainIDs []int64) error
}

// Deps are the Handler's collaborators.
type Deps struct {
	Accounts  Accounts
	Catalog   Catalog
	Feeds     Feeds
	Validator *validation.Validator
	Metrics   metrics.Recorder
	Logger    *slog.Logger
}

// Handler serves the backend API.
type Handler struct {
	accounts  Accounts
	catalog   Catalog
	feeds     Feeds
	validator *validation.Validator
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// New creates a new Handler instance.
func New(deps Deps) *Handler {
	h := &Handler{
		accounts:  deps.Accounts,
		catalog:   deps.Catalog,
		feeds:     deps.Feeds,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	if h.validator == nil {
		h.validator = validation.New()
	}
	if h.metrics == nil {
		h.metrics = metrics.NewNoop()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Routes mounts the API endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Root)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/domains", h.Domains)
	r.Get("/feed/{userId}", h.Feed)
	r.Post("/set-preferences/{userId}", h.SetPreferences)
}

// Root reports that the backend is up.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "InnoFeed backend running"})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

// decode reads a JSON body into dst and validates it. On failure it writes
// the error response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}

	if err := h.validator.Validate(dst); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// userID parses the {userId} path parameter. Zero is a valid id.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "user_id must be an integer")
		return 0, false
	}
	return id, true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, dto.ErrorResponse{Detail: detail})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
