package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"campus-ticketing/internal/logger"
	"campus-ticketing/internal/models"
	"campus-ticketing/internal/utils"
)

type Handler struct {
	Service *Service
	Logger  *logger.Logger
}

type credentialsResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStudent
	}

	user, token, err := h.Service.Register(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			utils.WriteError(w, http.StatusConflict, "email already registered", err)
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "registration failed", err)
		return
	}

	if h.Logger != nil {
		h.Logger.Info("AUTH", "User registered: "+user.ID)
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("registered", credentialsResponse{User: user, Token: token}))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, token, err := h.Service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.WriteError(w, http.StatusUnauthorized, "invalid credentials", err)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "login failed", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("logged in", credentialsResponse{User: user, Token: token}))
}
