package statements

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/platform/httpx"
	"github.com/bousala/bousala/internal/shared"
)

// Handler exposes statement endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts statement endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/clients/{id}", h.Client)
	r.Get("/suppliers/{id}", h.Supplier)
}

func (h *Handler) Client(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.ClientStatement)
}

func (h *Handler) Supplier(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.SupplierStatement)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, fetch func(context.Context, uuid.UUID, uuid.UUID) (Statement, error)) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entity id")
		return
	}
	st, err := fetch(r.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrEntityNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("statement failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}
