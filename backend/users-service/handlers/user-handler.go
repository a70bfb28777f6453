package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/users-service/models"
	"projecthub/backend/users-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	UserService *services.UserService
	Deletion    *services.DeletionCoordinator
}

func pathUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (h *UserHandler) writeLookup(w http.ResponseWriter, r *http.Request, id int64) {
	user, err := h.UserService.GetUser(r.Context(), id)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case err != nil:
		utils.WriteInternalError(w, r, err)
	default:
		utils.WriteSuccess(w, http.StatusOK, "user", user)
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	h.writeLookup(w, r, p.UserID)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	h.writeLookup(w, r, id)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		utils.WriteInternalError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "users", users)
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req models.ChangeRoleRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	p, _ := auth.FromContext(r.Context())
	user, err := h.UserService.ChangeRole(r.Context(), p, id, req.Role)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrLastAdminDemotion):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		utils.WriteInternalError(w, r, err)
	default:
		utils.WriteSuccess(w, http.StatusOK, "role updated", user)
	}
}

// DeleteUser runs the cascading deletion saga.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	p, _ := auth.FromContext(r.Context())
	result, err := h.Deletion.DeleteUser(r.Context(), p, id)

	var blocking *services.BlockingRolesError
	var cleanup *services.CleanupError
	var check *services.CheckError
	switch {
	case err == nil:
		utils.WriteSuccess(w, http.StatusOK, "user deleted", result)
	case errors.Is(err, services.ErrUserNotFound):
		utils.WriteFailure(w, http.StatusNotFound, err.Error(), result, err.Error())
	case errors.Is(err, services.ErrSelfDeletion), errors.Is(err, services.ErrLastSystemAdmin):
		utils.WriteFailure(w, http.StatusConflict, err.Error(), result, err.Error())
	case errors.As(err, &blocking):
		utils.WriteFailure(w, http.StatusConflict, "user holds roles that block deletion", result, blocking.Reasons...)
	case errors.As(err, &cleanup):
		logging.Logger.Warnf("Event ID: USER_DELETE_CLEANUP_FAILED, Description: %v: %v", cleanup, cleanup.Err)
		utils.WriteFailure(w, http.StatusBadGateway, cleanup.Error(), result, cleanup.Error())
	case errors.As(err, &check):
		utils.WriteFailure(w, http.StatusBadGateway, "blocking-role check failed", result, check.Error())
	default:
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %s %s failed: %v", r.Method, r.URL.Path, err)
		utils.WriteFailure(w, http.StatusInternalServerError, "internal error", result)
	}
}

// Routes registers the identity endpoints on r.
func (h *UserHandler) Routes(r *mux.Router, login *LoginHandler, tokens *auth.TokenManager) {
	r.HandleFunc("/api/users/register", login.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/users/login", login.Login).Methods(http.MethodPost)

	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireRole(auth.RoleSystemAdmin)(fn)
	}

	api := r.PathPrefix("/api/users").Subrouter()
	api.Use(auth.JWTAuthMiddleware(tokens))
	api.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
	api.Handle("", adminOnly(h.ListUsers)).Methods(http.MethodGet)
	api.Handle("/{id:[0-9]+}/role", adminOnly(h.ChangeRole)).Methods(http.MethodPut)
	api.Handle("/{id:[0-9]+}", adminOnly(h.DeleteUser)).Methods(http.MethodDelete)

	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(auth.JWTAuthMiddleware(tokens))
	internal.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)
}
