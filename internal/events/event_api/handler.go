package event_api

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-ticketing/internal/auth"
	eventdb "campus-ticketing/internal/events/db"
	events "campus-ticketing/internal/events/service"
	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
	Logger       *logger.Logger
}

func NewHandler(service *events.EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: service, Logger: log}
}

// ListEvents returns every event, or only the approved ones when the public
// browse filter ?approved=true is set.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	approvedOnly := r.URL.Query().Get("approved") == "true"
	list, err := h.EventService.ListEvents(approvedOnly)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to list events", err)
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("events", list))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	event, err := h.EventService.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, eventdb.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to load event", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event", event))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.SessionUser(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var input events.NewEventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.EventService.CreateEvent(input, user)
	if err != nil {
		if errors.Is(err, events.ErrValidation) {
			utils.WriteError(w, http.StatusBadRequest, "invalid event", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to create event", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("event created", event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var update events.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.EventService.UpdateEvent(eventID, update)
	if err != nil {
		switch {
		case errors.Is(err, eventdb.ErrNotFound):
			utils.WriteError(w, http.StatusNotFound, "event not found", err)
		case errors.Is(err, events.ErrValidation):
			utils.WriteError(w, http.StatusBadRequest, "invalid update", err)
		default:
			utils.WriteError(w, http.StatusInternalServerError, "failed to update event", err)
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event updated", event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if err := h.EventService.DeleteEvent(eventID); err != nil {
		if errors.Is(err, eventdb.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete event", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("event deleted", nil))
}

func (h *Handler) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, true)
}

func (h *Handler) RejectEvent(w http.ResponseWriter, r *http.Request) {
	h.setApproval(w, r, false)
}

func (h *Handler) setApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	admin, ok := auth.SessionUser(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	eventID := chi.URLParam(r, "eventID")

	var err error
	var event interface{}
	if approved {
		event, err = h.EventService.Approve(eventID, admin.ID)
	} else {
		event, err = h.EventService.Reject(eventID, admin.ID)
	}
	if err != nil {
		if errors.Is(err, eventdb.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "event not found", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to change approval", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("approval updated", event))
}

// ApprovalHistory returns the audit trail of approve/reject actions.
func (h *Handler) ApprovalHistory(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	records, err := h.EventService.ApprovalHistory(eventID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load approval history", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("approval history", records))
}
