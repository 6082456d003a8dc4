package ticket_api

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/inventory"
	"campus-ticketing/internal/logger"
	ticketdb "campus-ticketing/internal/tickets/db"
	tickets "campus-ticketing/internal/tickets/service"
	"campus-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	TicketService *tickets.TicketService
	Inventory     *inventory.Service
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, inv *inventory.Service, log *logger.Logger) *Handler {
	return &Handler{TicketService: ticketService, Inventory: inv, Logger: log}
}

// PurchaseTicket issues a ticket through the inventory guard. The purchaser
// is always the session user; the body names only the event.
func (h *Handler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.SessionUser(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required", inventory.ErrNotAuthenticated)
		return
	}

	var req struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.EventID == "" {
		utils.WriteError(w, http.StatusBadRequest, "eventId is required", nil)
		return
	}

	ticket, err := h.Inventory.Purchase(req.EventID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, inventory.ErrSoldOut):
			utils.WriteError(w, http.StatusConflict, "sold out", err)
		case errors.Is(err, inventory.ErrEventNotFound):
			utils.WriteError(w, http.StatusNotFound, "event not found", err)
		case errors.Is(err, inventory.ErrEventNotApproved),
			errors.Is(err, inventory.ErrEventEnded):
			utils.WriteError(w, http.StatusBadRequest, "event not open for purchase", err)
		case errors.Is(err, inventory.ErrNotAuthenticated):
			utils.WriteError(w, http.StatusUnauthorized, "authentication required", err)
		default:
			utils.WriteError(w, http.StatusInternalServerError, "failed to purchase ticket", err)
		}
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("ticket purchased", ticket))
}

func (h *Handler) ListTicketsByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	list, err := h.TicketService.GetTicketsByUser(userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to fetch tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("tickets", list))
}

func (h *Handler) ViewTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.TicketService.GetTicket(ticketID)
	if err != nil {
		if errors.Is(err, ticketdb.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "ticket not found", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to load ticket", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket", ticket))
}

// UseTicket marks the ticket used at check-in. A second call on the same
// ticket still succeeds; the flag stays true.
func (h *Handler) UseTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.TicketService.MarkUsed(ticketID)
	if err != nil {
		if errors.Is(err, ticketdb.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "ticket not found", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark ticket used", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("ticket used", ticket))
}

// Checkin accepts a scanned QR payload, decrypts it and marks the ticket used.
// Expected body: {"encrypted_qr": "base64 string"}.
func (h *Handler) Checkin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EncryptedQR string `json:"encrypted_qr"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.EncryptedQR == "" {
		utils.WriteError(w, http.StatusBadRequest, "encrypted_qr is required", nil)
		return
	}

	ticket, err := h.TicketService.CheckinFromQR(req.EncryptedQR)
	if err != nil {
		if errors.Is(err, ticketdb.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "ticket not found", err)
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "checkin failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("checkin successful", ticket))
}
