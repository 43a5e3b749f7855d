package record

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/record"
)

type Handler struct {
	svc *record.Service
}

func NewHandler(svc *record.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/purchases", h.createPurchase)
	r.Post("/orders", h.createOrder)
	r.Post("/assignments", h.assign)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/split", h.split)
	r.Post("/{id}/unassign", h.unassign)
	r.Post("/{id}/complete", h.complete)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fault.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, fault.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, fault.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, fault.ErrBusinessRule):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type createPurchaseRequest struct {
	EventID    *uuid.UUID       `json:"event_id,omitempty"`
	Quantity   int              `json:"quantity"`
	Section    string           `json:"section"`
	Row        string           `json:"row"`
	Seats      []string         `json:"seats,omitempty"`
	Notes      string           `json:"notes"`
	Cost       *decimal.Decimal `json:"cost,omitempty"`
	MemberID   string           `json:"member_id"`
	BoughtFrom string           `json:"bought_from"`
	VendorID   *uuid.UUID       `json:"vendor_id,omitempty"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req createPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.svc.CreatePurchase(r.Context(), chi.URLParam(r, "org"), record.CreatePurchaseParams{
		EventID:    req.EventID,
		Quantity:   req.Quantity,
		Section:    req.Section,
		Row:        req.Row,
		Seats:      req.Seats,
		Notes:      req.Notes,
		Cost:       req.Cost,
		MemberID:   req.MemberID,
		BoughtFrom: req.BoughtFrom,
		VendorID:   req.VendorID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(rec)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type createOrderRequest struct {
	EventID     *uuid.UUID       `json:"event_id,omitempty"`
	Quantity    int              `json:"quantity"`
	Section     string           `json:"section"`
	Row         string           `json:"row"`
	Seats       []string         `json:"seats,omitempty"`
	Notes       string           `json:"notes"`
	Selling     *decimal.Decimal `json:"selling,omitempty"`
	OrderNumber string           `json:"order_number"`
	SoldTo      string           `json:"sold_to"`
	VendorID    *uuid.UUID       `json:"vendor_id,omitempty"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.svc.CreateOrder(r.Context(), chi.URLParam(r, "org"), record.CreateOrderParams{
		EventID:     req.EventID,
		Quantity:    req.Quantity,
		Section:     req.Section,
		Row:         req.Row,
		Seats:       req.Seats,
		Notes:       req.Notes,
		Selling:     req.Selling,
		OrderNumber: req.OrderNumber,
		SoldTo:      req.SoldTo,
		VendorID:    req.VendorID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(rec)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := record.ListFilter{}

	if s := r.URL.Query().Get("kind"); s != "" {
		kind := record.Kind(s)
		filter.Kind = &kind
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := record.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("event_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid event_id", http.StatusBadRequest)
			return
		}

		filter.EventID = &id
	}

	recs, err := h.svc.List(r.Context(), chi.URLParam(r, "org"), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(recs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "org"), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(rec)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateRecordRequest struct {
	EventID  *uuid.UUID     `json:"event_id,omitempty"`
	Quantity *int           `json:"quantity,omitempty"`
	Section  *string        `json:"section,omitempty"`
	Row      *string        `json:"row,omitempty"`
	Seats    []string       `json:"seats,omitempty"`
	Notes    *string        `json:"notes,omitempty"`
	Status   *record.Status `json:"status,omitempty"`

	Cost               *decimal.Decimal `json:"cost,omitempty"`
	MemberID           *string          `json:"member_id,omitempty"`
	BoughtFrom         *string          `json:"bought_from,omitempty"`
	BoughtFromVendorID *uuid.UUID       `json:"bought_from_vendor_id,omitempty"`

	Selling        *decimal.Decimal `json:"selling,omitempty"`
	OrderNumber    *string          `json:"order_number,omitempty"`
	SoldTo         *string          `json:"sold_to,omitempty"`
	SoldToVendorID *uuid.UUID       `json:"sold_to_vendor_id,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.svc.Update(r.Context(), chi.URLParam(r, "org"), id, record.UpdateParams{
		EventID:            req.EventID,
		Quantity:           req.Quantity,
		Section:            req.Section,
		Row:                req.Row,
		Seats:              req.Seats,
		Notes:              req.Notes,
		Status:             req.Status,
		Cost:               req.Cost,
		MemberID:           req.MemberID,
		BoughtFrom:         req.BoughtFrom,
		BoughtFromVendorID: req.BoughtFromVendorID,
		Selling:            req.Selling,
		OrderNumber:        req.OrderNumber,
		SoldTo:             req.SoldTo,
		SoldToVendorID:     req.SoldToVendorID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(rec)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "org"), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type splitRequest struct {
	Parts []splitPartRequest `json:"parts"`
}

type splitPartRequest struct {
	Quantity int      `json:"quantity"`
	Seats    []string `json:"seats,omitempty"`
}

func (h *Handler) split(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	parts := make([]record.SplitPart, len(req.Parts))
	for i, part := range req.Parts {
		parts[i] = record.SplitPart{Quantity: part.Quantity, Seats: part.Seats}
	}

	recs, err := h.svc.Split(r.Context(), chi.URLParam(r, "org"), id, parts)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(recs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type assignRequest struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	OrderID     uuid.UUID `json:"order_id"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sale, err := h.svc.Assign(r.Context(), chi.URLParam(r, "org"), req.InventoryID, req.OrderID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(sale)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) unassign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Unassign(r.Context(), chi.URLParam(r, "org"), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Complete(r.Context(), chi.URLParam(r, "org"), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
