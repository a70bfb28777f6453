package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/notifications-service/models"
	"projecthub/backend/notifications-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func writeNotificationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotificationNotFound):
		utils.WriteError(w, http.StatusNotFound, "notification not found", err.Error())
	case errors.Is(err, services.ErrInvalidID):
		utils.WriteError(w, http.StatusBadRequest, "invalid id", err.Error())
	default:
		utils.WriteInternalError(w, r, err)
	}
}

func caller(r *http.Request) int64 {
	p, _ := auth.FromContext(r.Context())
	return p.UserID
}

// CreateNotification is the service-to-service entry point.
func (nh *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req models.CreateNotificationRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_INVALID, Description: Invalid request payload: %v", err)
		utils.WriteBadRequest(w, err)
		return
	}
	n, err := nh.service.CreateNotification(r.Context(), req)
	if err != nil {
		writeNotificationError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "notification created", n)
}

// GetNotifications accepts ?unread=true and ?limit=N.
func (nh *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := nh.service.GetNotifications(r.Context(), caller(r), unreadOnly, limit)
	if err != nil {
		writeNotificationError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "notifications", list)
}

func (nh *NotificationHandler) MarkNotificationAsRead(w http.ResponseWriter, r *http.Request) {
	n, err := nh.service.MarkAsRead(r.Context(), caller(r), mux.Vars(r)["id"])
	if err != nil {
		writeNotificationError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "notification marked as read", n)
}

func (nh *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := nh.service.DeleteNotification(r.Context(), caller(r), id); err != nil {
		writeNotificationError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "notification deleted", id)
}

func (nh *NotificationHandler) Routes(r *mux.Router, tokens *auth.TokenManager) {
	api := r.PathPrefix("/api/notifications").Subrouter()
	api.Use(auth.JWTAuthMiddleware(tokens))
	api.HandleFunc("", nh.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/{id}/read", nh.MarkNotificationAsRead).Methods(http.MethodPut)
	api.HandleFunc("/{id}", nh.DeleteNotification).Methods(http.MethodDelete)

	internal := r.PathPrefix("/internal/notifications").Subrouter()
	internal.Use(auth.JWTAuthMiddleware(tokens))
	internal.HandleFunc("", nh.CreateNotification).Methods(http.MethodPost)
}
