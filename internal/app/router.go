package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bousala/bousala/internal/analytics"
	"github.com/bousala/bousala/internal/auth"
	"github.com/bousala/bousala/internal/cashflow"
	"github.com/bousala/bousala/internal/insights"
	"github.com/bousala/bousala/internal/manufacturing"
	"github.com/bousala/bousala/internal/masterdata"
	"github.com/bousala/bousala/internal/masterdata/products"
	"github.com/bousala/bousala/internal/platform/httpx"
	"github.com/bousala/bousala/internal/purchasing"
	"github.com/bousala/bousala/internal/sales"
	"github.com/bousala/bousala/internal/statements"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	AuthService          *auth.Service
	AuthHandler          *auth.Handler
	ProductsHandler      *products.Handler
	MasterDataHandler    *masterdata.Handler
	SalesHandler         *sales.Handler
	PurchasingHandler    *purchasing.Handler
	ManufacturingHandler *manufacturing.Handler
	CashflowHandler      *cashflow.Handler
	StatementsHandler    *statements.Handler
	AnalyticsHandler     *analytics.Handler
	InsightsHandler      *insights.Handler
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(params.Logger, params.Config) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.Routes)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthService.Middleware)

			r.Route("/products", params.ProductsHandler.Routes)
			params.MasterDataHandler.MountRoutes(r)
			r.Route("/sales", params.SalesHandler.Routes)
			r.Route("/purchases", params.PurchasingHandler.Routes)
			r.Route("/manufacture", params.ManufacturingHandler.Routes)
			params.CashflowHandler.Routes(r)
			r.Route("/statements", params.StatementsHandler.Routes)
			r.Route("/reports", params.AnalyticsHandler.Routes)
			r.Route("/insights", params.InsightsHandler.Routes)
		})
	})

	return r
}
