package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stubdesk/backoffice/internal/fault"
	"github.com/stubdesk/backoffice/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Post("/{id}/payments", h.recordPayment)
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

type createTransactionRequest struct {
	Kind            ledger.Kind       `json:"kind"`
	Amount          decimal.Decimal   `json:"amount"`
	Description     string            `json:"description"`
	VendorID        *uuid.UUID        `json:"vendor_id,omitempty"`
	Direction       *ledger.Direction `json:"direction,omitempty"`
	Mode            ledger.Mode       `json:"mode,omitempty"`
	JournalVendorID *uuid.UUID        `json:"journal_vendor_id,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	txs, err := h.svc.Create(r.Context(), chi.URLParam(r, "org"), ledger.CreateParams{
		Kind:            req.Kind,
		Amount:          req.Amount,
		Description:     req.Description,
		VendorID:        req.VendorID,
		Direction:       req.Direction,
		Mode:            req.Mode,
		JournalVendorID: req.JournalVendorID,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{}

	if s := r.URL.Query().Get("kind"); s != "" {
		kind := ledger.Kind(s)
		filter.Kind = &kind
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := ledger.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("vendor_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid vendor_id", http.StatusBadRequest)
			return
		}

		filter.VendorID = &id
	}

	if s := r.URL.Query().Get("record_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid record_id", http.StatusBadRequest)
			return
		}

		filter.RecordID = &id
	}

	txs, err := h.svc.List(r.Context(), chi.URLParam(r, "org"), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "org"), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateStatusRequest struct {
	Status        ledger.Status `json:"status"`
	BankAccountID *uuid.UUID    `json:"bank_account_id,omitempty"`
	Actor         string        `json:"actor"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = h.svc.SetStatus(r.Context(), chi.URLParam(r, "org"), id, req.Status, ledger.SetStatusOptions{
		BankAccountID: req.BankAccountID,
		Actor:         req.Actor,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type recordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	BankAccountID uuid.UUID       `json:"bank_account_id"`
	Actor         string          `json:"actor"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.RecordPartialPayment(r.Context(), chi.URLParam(r, "org"), id, req.Amount, req.BankAccountID, req.Actor)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
