package analytics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bousala/bousala/internal/platform/httpx"
	"github.com/bousala/bousala/internal/shared"
)

// Handler exposes report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes mounts report endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/kpi", h.KPI)
	r.Get("/trend", h.Trend)
	r.Get("/expenses", h.ExpenseBreakdown)
}

// Dashboard assembles the three reports concurrently for one response.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter := windowFromQuery(r)
	filter.OwnerID = ownerID

	var (
		kpi      KPISummary
		trend    []TrendPoint
		expenses []CategoryTotal
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		kpi, err = h.service.GetKPISummary(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		trend, err = h.service.GetMonthlyTrend(ctx, ownerID, 12)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = h.service.GetExpenseBreakdown(ctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("dashboard failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"kpi":      kpi,
		"trend":    trend,
		"expenses": expenses,
	})
}

func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter := windowFromQuery(r)
	filter.OwnerID = ownerID
	kpi, err := h.service.GetKPISummary(r.Context(), filter)
	if err != nil {
		h.logger.Error("kpi failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, kpi)
}

func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))
	trend, err := h.service.GetMonthlyTrend(r.Context(), ownerID, months)
	if err != nil {
		h.logger.Error("trend failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trend": trend})
}

func (h *Handler) ExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filter := windowFromQuery(r)
	filter.OwnerID = ownerID
	expenses, err := h.service.GetExpenseBreakdown(r.Context(), filter)
	if err != nil {
		h.logger.Error("expense breakdown failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func windowFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	now := time.Now().UTC()
	filter := Filter{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		To:   now.Add(24 * time.Hour),
	}
	if v := q.Get("from"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			filter.From = ts
		}
	}
	if v := q.Get("to"); v != "" {
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			filter.To = ts
		}
	}
	return filter
}
