package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/tasks-service/models"
	"projecthub/backend/tasks-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// writeServiceError maps service errors onto status codes. Integrity
// violations are user-facing failures, anything unknown is a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var remote *utils.RemoteError
	switch {
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, services.ErrDependencyNotFound):
		utils.WriteError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, services.ErrInvalidID):
		utils.WriteError(w, http.StatusBadRequest, "invalid id", err.Error())
	case errors.Is(err, services.ErrCircularHierarchy),
		errors.Is(err, services.ErrCircularDependency),
		errors.Is(err, services.ErrDuplicateDependency),
		errors.Is(err, services.ErrHasSubtasks),
		errors.Is(err, services.ErrUnfinishedDeps):
		utils.WriteError(w, http.StatusConflict, err.Error(), err.Error())
	case errors.Is(err, services.ErrSelfReference),
		errors.Is(err, services.ErrCrossProject),
		errors.Is(err, services.ErrAssigneeNotMember):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), err.Error())
	case errors.Is(err, services.ErrNotProjectMember), errors.Is(err, services.ErrReadOnlyMember):
		utils.WriteError(w, http.StatusForbidden, "access forbidden", err.Error())
	case errors.As(err, &remote) && remote.StatusCode < 500:
		utils.WriteError(w, http.StatusBadGateway, "dependent service rejected the request", err.Error())
	default:
		utils.WriteInternalError(w, r, err)
	}
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	task, err := h.service.CreateTask(r.Context(), principal(r), mux.Vars(r)["projectId"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "task created", task)
}

func (h *TaskHandler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.GetTasksByProject(r.Context(), principal(r), mux.Vars(r)["projectId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "tasks", tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(r.Context(), principal(r), mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "task", task)
}

func (h *TaskHandler) GetSubtasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.GetSubtasks(r.Context(), principal(r), mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "subtasks", tasks)
}

func (h *TaskHandler) ChangeTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ChangeStatusRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	task, err := h.service.ChangeTaskStatus(r.Context(), principal(r), mux.Vars(r)["taskId"], req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "status updated", task)
}

func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	var req models.AssignRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	task, err := h.service.AssignTask(r.Context(), principal(r), mux.Vars(r)["taskId"], req.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "assignee updated", task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), principal(r), mux.Vars(r)["taskId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess[any](w, http.StatusOK, "task deleted", nil)
}

func (h *TaskHandler) SetParent(w http.ResponseWriter, r *http.Request) {
	var req models.SetParentRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	task, err := h.service.SetParent(r.Context(), principal(r), mux.Vars(r)["taskId"], req.ParentTaskID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "parent updated", task)
}

func (h *TaskHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	var req models.AddDependencyRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	dep, err := h.service.AddDependency(r.Context(), principal(r), mux.Vars(r)["taskId"], req.DependsOnTaskID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "dependency added", dep)
}

func (h *TaskHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveDependency(r.Context(), principal(r), mux.Vars(r)["dependencyId"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess[any](w, http.StatusOK, "dependency removed", nil)
}

func (h *TaskHandler) GetDependencies(w http.ResponseWriter, r *http.Request) {
	deps, err := h.service.GetDependencies(r.Context(), principal(r), mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "dependencies", deps)
}

func (h *TaskHandler) GetDependents(w http.ResponseWriter, r *http.Request) {
	deps, err := h.service.GetDependents(r.Context(), principal(r), mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "dependents", deps)
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req models.AddCommentRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	comment, err := h.service.AddComment(r.Context(), principal(r), mux.Vars(r)["taskId"], req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "comment added", comment)
}

func (h *TaskHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.GetComments(r.Context(), principal(r), mux.Vars(r)["taskId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "comments", comments)
}

// CleanupUser is the internal step of the user deletion saga.
func (h *TaskHandler) CleanupUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || userID <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	report, err := h.service.CleanupUser(r.Context(), principal(r).Token, userID)
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_CLEANUP_FAILED, Description: Task cleanup for user %d failed after %d batches: %v", userID, report.Batches, err)
		utils.WriteFailure(w, http.StatusInternalServerError, "task cleanup failed", report)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "user tasks unassigned", report)
}

// Routes registers every task-service endpoint on r.
func (h *TaskHandler) Routes(r *mux.Router, tokens *auth.TokenManager) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.JWTAuthMiddleware(tokens))

	api.HandleFunc("/projects/{projectId}/tasks", h.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectId}/tasks", h.GetTasksByProject).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", h.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", h.DeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskId}/status", h.ChangeTaskStatus).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}/assignee", h.AssignTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}/parent", h.SetParent).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}/subtasks", h.GetSubtasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}/dependencies", h.AddDependency).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskId}/dependencies", h.GetDependencies).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}/dependents", h.GetDependents).Methods(http.MethodGet)
	api.HandleFunc("/dependencies/{dependencyId}", h.RemoveDependency).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskId}/comments", h.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskId}/comments", h.GetComments).Methods(http.MethodGet)

	internal := r.PathPrefix("/internal").Subrouter()
	internal.Use(auth.JWTAuthMiddleware(tokens), auth.RequireRole(auth.RoleSystemAdmin))
	internal.HandleFunc("/cleanup/{userId:[0-9]+}", h.CleanupUser).Methods(http.MethodPost)
}
