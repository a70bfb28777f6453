package handlers

import (
	"errors"
	"net/http"

	"projecthub/backend/users-service/models"
	"projecthub/backend/users-service/services"
	"projecthub/backend/utils"
)

type LoginHandler struct {
	UserService *services.UserService
}

func (h *LoginHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	user, err := h.UserService.RegisterUser(r.Context(), req)
	switch {
	case errors.Is(err, services.ErrWeakPassword):
		utils.WriteError(w, http.StatusBadRequest, "password rejected", err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		utils.WriteInternalError(w, r, err)
	default:
		utils.WriteSuccess(w, http.StatusCreated, "registration successful", user)
	}
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	resp, err := h.UserService.Login(r.Context(), req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, err.Error())
	case err != nil:
		utils.WriteInternalError(w, r, err)
	default:
		utils.WriteSuccess(w, http.StatusOK, "login successful", resp)
	}
}
