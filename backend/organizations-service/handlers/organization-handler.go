package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/organizations-service/models"
	"projecthub/backend/organizations-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
)

type OrganizationHandler struct {
	service *services.OrganizationService
}

func NewOrganizationHandler(service *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidID):
		utils.WriteError(w, http.StatusBadRequest, "invalid id", err.Error())
	case errors.Is(err, services.ErrNotMember), errors.Is(err, services.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "access forbidden", err.Error())
	case errors.Is(err, services.ErrNameTaken),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrOwnerRoleChange),
		errors.Is(err, services.ErrLastOwner),
		errors.Is(err, services.ErrTransferToSelf):
		utils.WriteError(w, http.StatusConflict, err.Error())
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

func (h *OrganizationHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrganizationRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	org, err := h.service.CreateOrganization(r.Context(), principal(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "organization created", org)
}

func (h *OrganizationHandler) ListMyOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.ListMyOrganizations(r.Context(), principal(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "organizations", orgs)
}

func (h *OrganizationHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.service.GetOrganization(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "organization", org)
}

func (h *OrganizationHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.GetMembers(r.Context(), principal(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "members", members)
}

func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req models.AddMemberRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	m, err := h.service.AddMember(r.Context(), principal(r), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "member added", m)
}

func (h *OrganizationHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
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
	m, err := h.service.ChangeMemberRole(r.Context(), principal(r), mux.Vars(r)["id"], userID, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "role updated", m)
}

func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := h.service.RemoveMember(r.Context(), principal(r), mux.Vars(r)["id"], userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "member removed", struct{}{})
}

func (h *OrganizationHandler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req models.TransferOwnershipRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	m, err := h.service.TransferOwnership(r.Context(), principal(r), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "ownership transferred", m)
}

func (h *OrganizationHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	m, err := h.service.GetMember(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "member", m)
}

func (h *OrganizationHandler) BlockingRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	report, err := h.service.BlockingRoles(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "blocking roles", report)
}

func (h *OrganizationHandler) CleanupUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	report, err := h.service.CleanupUser(r.Context(), userID)
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_CLEANUP_FAILED, Description: Organization cleanup for user %d failed: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "organization cleanup failed")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "memberships deactivated", report)
}

func (h *OrganizationHandler) Routes(r *mux.Router, tokens *auth.TokenManager) {
	api := r.PathPrefix("/api/organizations").Subrouter()
	api.Use(auth.JWTAuthMiddleware(tokens))
	api.HandleFunc("", h.CreateOrganization).Methods(http.MethodPost)
	api.HandleFunc("", h.ListMyOrganizations).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.GetOrganization).Methods(http.MethodGet)
	api.HandleFunc("/{id}/members", h.GetMembers).Methods(http.MethodGet)
	api.HandleFunc("/{id}/members", h.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/{id}/members/{userId:[0-9]+}/role", h.ChangeMemberRole).Methods(http.MethodPut)
	api.HandleFunc("/{id}/members/{userId:[0-9]+}", h.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/transfer-ownership", h.TransferOwnership).Methods(http.MethodPost)

	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(auth.JWTAuthMiddleware(tokens))
	internal.HandleFunc("/organizations/{id}/members/{userId:[0-9]+}", h.GetMember).Methods(http.MethodGet)
	internal.Handle("/blocking-roles/{userId:[0-9]+}", auth.RequireRole(auth.RoleSystemAdmin)(http.HandlerFunc(h.BlockingRoles))).Methods(http.MethodGet)
	internal.Handle("/cleanup/{userId:[0-9]+}", auth.RequireRole(auth.RoleSystemAdmin)(http.HandlerFunc(h.CleanupUser))).Methods(http.MethodPost)
}
