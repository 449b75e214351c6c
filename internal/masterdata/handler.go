// Package masterdata exposes CRUD endpoints for the balance-bearing
// entities: clients, suppliers, employees, and cash accounts. Products have
// their own handler under masterdata/products.
package masterdata

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bousala/bousala/internal/masterdata/accounts"
	"github.com/bousala/bousala/internal/masterdata/clients"
	"github.com/bousala/bousala/internal/masterdata/employees"
	mdshared "github.com/bousala/bousala/internal/masterdata/shared"
	"github.com/bousala/bousala/internal/masterdata/suppliers"
	"github.com/bousala/bousala/internal/platform/httpx"
	"github.com/bousala/bousala/internal/shared"
)

// Handler manages master data endpoints.
type Handler struct {
	logger    *slog.Logger
	clients   *clients.Service
	suppliers *suppliers.Service
	employees *employees.Service
	accounts  *accounts.Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, clientsSvc *clients.Service, suppliersSvc *suppliers.Service, employeesSvc *employees.Service, accountsSvc *accounts.Service) *Handler {
	return &Handler{logger: logger, clients: clientsSvc, suppliers: suppliersSvc, employees: employeesSvc, accounts: accountsSvc}
}

// MountRoutes registers master data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.showClient)
		r.Put("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Post("/", h.createSupplier)
		r.Get("/{id}", h.showSupplier)
		r.Put("/{id}", h.updateSupplier)
		r.Delete("/{id}", h.deleteSupplier)
	})
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.listEmployees)
		r.Post("/", h.createEmployee)
		r.Get("/{id}", h.showEmployee)
		r.Put("/{id}", h.updateEmployee)
		r.Delete("/{id}", h.deleteEmployee)
	})
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Get("/{id}", h.showAccount)
		r.Put("/{id}", h.updateAccount)
		r.Delete("/{id}", h.deleteAccount)
	})
}

func requestScope(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := shared.OwnerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return uuid.Nil, false
	}
	return ownerID, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func listFilters(r *http.Request) mdshared.ListFilters {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return mdshared.ListFilters{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}
}

func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mdshared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, mdshared.ErrDuplicate):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, mdshared.ErrValidation), errors.Is(err, mdshared.ErrInvalidID), errors.Is(err, mdshared.ErrRequiredField):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

// --- clients ---

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	filters := listFilters(r)
	items, total, err := h.clients.List(r.Context(), ownerID, filters)
	if err != nil {
		h.logger.Error("list clients failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"clients":    items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	client, err := h.clients.Get(r.Context(), ownerID, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	var client clients.Client
	if err := httpx.DecodeJSON(r, &client); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	client.OwnerID = ownerID
	created, err := h.clients.Create(r.Context(), client)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var client clients.Client
	if err := httpx.DecodeJSON(r, &client); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	client.ID = id
	client.OwnerID = ownerID
	if err := h.clients.Update(r.Context(), client); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.clients.Delete(r.Context(), ownerID, id); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- suppliers ---

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	filters := listFilters(r)
	items, total, err := h.suppliers.List(r.Context(), ownerID, filters)
	if err != nil {
		h.logger.Error("list suppliers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"suppliers":  items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showSupplier(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	supplier, err := h.suppliers.Get(r.Context(), ownerID, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	var supplier suppliers.Supplier
	if err := httpx.DecodeJSON(r, &supplier); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	supplier.OwnerID = ownerID
	created, err := h.suppliers.Create(r.Context(), supplier)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var supplier suppliers.Supplier
	if err := httpx.DecodeJSON(r, &supplier); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	supplier.ID = id
	supplier.OwnerID = ownerID
	if err := h.suppliers.Update(r.Context(), supplier); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.suppliers.Delete(r.Context(), ownerID, id); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- employees ---

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	filters := listFilters(r)
	items, total, err := h.employees.List(r.Context(), ownerID, filters)
	if err != nil {
		h.logger.Error("list employees failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"employees":  items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) showEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	employee, err := h.employees.Get(r.Context(), ownerID, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	var employee employees.Employee
	if err := httpx.DecodeJSON(r, &employee); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	employee.OwnerID = ownerID
	created, err := h.employees.Create(r.Context(), employee)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var employee employees.Employee
	if err := httpx.DecodeJSON(r, &employee); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	employee.ID = id
	employee.OwnerID = ownerID
	if err := h.employees.Update(r.Context(), employee); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.employees.Delete(r.Context(), ownerID, id); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- accounts ---

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	items, err := h.accounts.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("list accounts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": items})
}

func (h *Handler) showAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.Get(r.Context(), ownerID, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	var account accounts.Account
	if err := httpx.DecodeJSON(r, &account); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	account.OwnerID = ownerID
	created, err := h.accounts.Create(r.Context(), account)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var account accounts.Account
	if err := httpx.DecodeJSON(r, &account); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	account.ID = id
	account.OwnerID = ownerID
	if err := h.accounts.Update(r.Context(), account); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requestScope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.accounts.Delete(r.Context(), ownerID, id); err != nil {
		respondDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
