package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/projects-service/models"
	"projecthub/backend/projects-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	Service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{Service: service}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var remote *utils.RemoteError
	switch {
	case errors.Is(err, services.ErrProjectNotFound), errors.Is(err, services.ErrMemberNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidID), errors.Is(err, services.ErrInvalidDates):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotOrgMember):
		utils.WriteError(w, http.StatusForbidden, "access forbidden", err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrLastManager),
		errors.Is(err, services.ErrProjectFull),
		errors.Is(err, services.ErrNameTaken):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &remote):
		logging.Logger.Warnf("Event ID: DOWNSTREAM_FAILED, Description: %s %s: %v", r.Method, r.URL.Path, err)
		utils.WriteError(w, http.StatusBadGateway, "organization service unavailable", err.Error())
	default:
		utils.WriteInternalError(w, r, err)
	}
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

func pathUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	return id, err == nil && id > 0
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	project, err := h.Service.CreateProject(r.Context(), principal(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "project created", project)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	project, err := h.Service.GetProject(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "project", project)
}

func (h *ProjectHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.ListByOrganization(r.Context(), principal(r), mux.Vars(r)["orgId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "projects", projects)
}

func (h *ProjectHandler) GetProjectMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.GetMembers(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "members", members)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req models.AddMemberRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	m, err := h.Service.AddMember(r.Context(), principal(r), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "member added", m)
}

func (h *ProjectHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req models.ChangeRoleRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	m, err := h.Service.ChangeMemberRole(r.Context(), principal(r), mux.Vars(r)["id"], userID, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "role updated", m)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.Service.RemoveMember(r.Context(), principal(r), mux.Vars(r)["id"], userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "member removed", struct{}{})
}

func (h *ProjectHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	m, err := h.Service.GetMember(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "member", m)
}

func (h *ProjectHandler) BlockingRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	report, err := h.Service.BlockingRoles(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "blocking roles", report)
}

func (h *ProjectHandler) CleanupUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	report, err := h.Service.CleanupUser(r.Context(), userID)
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_CLEANUP_FAILED, Description: Project cleanup for user %d failed: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "project cleanup failed")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "project memberships deactivated", report)
}

func (h *ProjectHandler) Routes(r *mux.Router, tokens *auth.TokenManager) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTAuthMiddleware(tokens))
	api.HandleFunc("/projects", h.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", h.GetProjectByID).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{orgId}/projects", h.ListByOrganization).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/members", h.GetProjectMembers).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/members", h.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/members/{userId:[0-9]+}/role", h.ChangeMemberRole).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}/members/{userId:[0-9]+}", h.RemoveMember).Methods(http.MethodDelete)

	adminOnly := auth.RequireRole(auth.RoleSystemAdmin)
	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(auth.JWTAuthMiddleware(tokens))
	internal.HandleFunc("/projects/{id}/members/{userId:[0-9]+}", h.GetMember).Methods(http.MethodGet)
	internal.Handle("/blocking-roles/{userId:[0-9]+}", adminOnly(http.HandlerFunc(h.BlockingRoles))).Methods(http.MethodGet)
	internal.Handle("/cleanup/{userId:[0-9]+}", adminOnly(http.HandlerFunc(h.CleanupUser))).Methods(http.MethodPost)
}
