package insights

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bousala/bousala/internal/platform/httpx"
	"github.com/bousala/bousala/internal/shared"
)

// Handler exposes the insights endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts insight endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"insights": h.service.Generate(r.Context(), ownerID),
	})
}
