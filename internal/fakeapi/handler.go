package fakeapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fjod/papapizza/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	store    *Store
	validate *validator.Validate
	log      *slog.Logger
}

func NewHandler(store *Store, log *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// GET /api/pizzas
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Products())
}

// GET /api/pizzas/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Product(domain.ProductID(chi.URLParam(r, "id")))
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// POST /api/create-order
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var draft domain.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(draft); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_order", err.Error())
		return
	}

	id, err := h.store.CreateOrder(clientIDFromContext(r.Context()), draft)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}

	h.log.InfoContext(r.Context(), "order created", slog.Int64("order_id", id), slog.Int("lines", len(draft.Items)))
	respondJSON(w, http.StatusOK, domain.OrderConfirmation{Message: domain.OrderSubmitSuccess, OrderID: id})
}

// GET /api/clients/{id}
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if clientID != clientIDFromContext(r.Context()) {
		respondError(w, http.StatusForbidden, "forbidden", "orders of another client")
		return
	}

	orders, err := h.store.Orders(clientID)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, OrdersResponse{Orders: orders})
}

// GET /api/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	details, owner, err := h.store.OrderDetails(orderID)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	if owner != clientIDFromContext(r.Context()) {
		respondError(w, http.StatusForbidden, "forbidden", "order of another client")
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// POST /api/orders/{id}/advance
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if _, owner, err := h.store.OrderDetails(orderID); err != nil {
		h.handleStoreError(w, err)
		return
	} else if owner != clientIDFromContext(r.Context()) {
		respondError(w, http.StatusForbidden, "forbidden", "order of another client")
		return
	}

	details, err := h.store.Advance(orderID)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(creds); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_credentials", err.Error())
		return
	}

	session, err := h.store.Login(creds)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(reg); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_registration", err.Error())
		return
	}

	session, err := h.store.Register(reg)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, ErrClientNotFound):
		respondError(w, http.StatusNotFound, "client_not_found", err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrAlreadyCompleted):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		h.log.Error("mock api store error", slog.Any("err", err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Message: message, Code: code})
}
