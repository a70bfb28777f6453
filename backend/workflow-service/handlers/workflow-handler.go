package handlers

import (
	"errors"
	"net/http"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/utils"
	"projecthub/backend/workflow-service/models"
	"projecthub/backend/workflow-service/services"
	"projecthub/backend/workflow-service/services/commands"
	"projecthub/backend/workflow-service/services/queries"

	"github.com/gorilla/mux"
)

type WorkflowHandler struct {
	WorkflowService *services.WorkflowService
}

func NewWorkflowHandler(service *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{WorkflowService: service}
}

func writeWorkflowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNodeNotFound), errors.Is(err, services.ErrDependencyNotFound):
		utils.WriteError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, services.ErrDependencyExists), errors.Is(err, services.ErrCycle):
		utils.WriteError(w, http.StatusConflict, err.Error(), err.Error())
	case errors.Is(err, services.ErrSelfDependency):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), err.Error())
	default:
		utils.WriteInternalError(w, r, err)
	}
}

func (h *WorkflowHandler) UpsertTaskNode(w http.ResponseWriter, r *http.Request) {
	var node models.TaskNode
	if err := utils.DecodeAndValidate(r, &node); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	handler := commands.NewUpsertTaskNodeHandler(h.WorkflowService)
	if err := handler.Handle(r.Context(), commands.UpsertTaskNodeCommand{Node: node}); err != nil {
		writeWorkflowError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "task node stored", node.ID)
}

func (h *WorkflowHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	var edge models.DependencyEdge
	if err := utils.DecodeAndValidate(r, &edge); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	handler := commands.NewAddDependencyHandler(h.WorkflowService)
	if err := handler.Handle(r.Context(), commands.AddDependencyCommand{Dependency: edge}); err != nil {
		logging.Logger.Warnf("Event ID: WORKFLOW_DEPENDENCY_REJECTED, Description: %s -> %s: %v", edge.TaskID, edge.DependsOnTaskID, err)
		writeWorkflowError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "dependency added", edge)
}

func (h *WorkflowHandler) RemoveDependency(w http.ResponseWriter, r *http.Request) {
	var edge models.DependencyEdge
	if err := utils.DecodeAndValidate(r, &edge); err != nil {
		utils.WriteBadRequest(w, err)
		return
	}
	handler := commands.NewRemoveDependencyHandler(h.WorkflowService)
	if err := handler.Handle(r.Context(), commands.RemoveDependencyCommand{Dependency: edge}); err != nil {
		writeWorkflowError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "dependency removed", edge)
}

func (h *WorkflowHandler) GetDependencies(w http.ResponseWriter, r *http.Request) {
	q := queries.GetDependenciesQuery{TaskID: mux.Vars(r)["taskId"], Svc: h.WorkflowService}
	deps, err := q.Execute(r.Context())
	if err != nil {
		writeWorkflowError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "dependencies", deps)
}

func (h *WorkflowHandler) GetWorkflowGraph(w http.ResponseWriter, r *http.Request) {
	q := queries.GetProjectGraphQuery{ProjectID: mux.Vars(r)["projectId"], Svc: h.WorkflowService}
	graph, err := q.Execute(r.Context())
	if err != nil {
		writeWorkflowError(w, r, err)
		return
	}
	logging.Logger.Infof("Event ID: WORKFLOW_GRAPH_LOADED, Description: Project %s: nodes=%d, dependencies=%d", graph.ProjectID, len(graph.Nodes), len(graph.Edges))
	utils.WriteSuccess(w, http.StatusOK, "workflow graph", graph)
}

func (h *WorkflowHandler) Routes(r *mux.Router, tokens *auth.TokenManager) {
	api := r.PathPrefix("/api/workflow").Subrouter()
	api.Use(auth.JWTAuthMiddleware(tokens))
	api.HandleFunc("/task-node", h.UpsertTaskNode).Methods(http.MethodPost)
	api.HandleFunc("/dependency", h.AddDependency).Methods(http.MethodPost)
	api.HandleFunc("/dependency", h.RemoveDependency).Methods(http.MethodDelete)
	api.HandleFunc("/dependencies/{taskId}", h.GetDependencies).Methods(http.MethodGet)
	api.HandleFunc("/graph/{projectId}", h.GetWorkflowGraph).Methods(http.MethodGet)
}
