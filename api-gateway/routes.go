package main

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
)

// reverseProxyURL forwards to target, answering 502 in the usual envelope
// when the service is unreachable.
func reverseProxyURL(target string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse upstream %q: %w", target, err)
	}
	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Logger.Errorf("Event ID: GATEWAY_UPSTREAM_FAILED, Description: %s %s -> %s: %v", r.Method, r.URL.Path, u.Host, err)
		utils.WriteError(w, http.StatusBadGateway, "upstream service unavailable")
	}
	return proxy, nil
}

// NewRouter maps public path prefixes onto services. More specific nested
// routes are registered before the prefixes that would otherwise swallow them.
func NewRouter(cfg Config) (http.Handler, error) {
	upstream := map[string]string{
		"users":         cfg.UsersServiceURL,
		"organizations": cfg.OrganizationsServiceURL,
		"projects":      cfg.ProjectsServiceURL,
		"tasks":         cfg.TasksServiceURL,
		"workflow":      cfg.WorkflowServiceURL,
		"notifications": cfg.NotificationsServiceURL,
	}
	proxies := map[string]http.Handler{}
	for name, target := range upstream {
		p, err := reverseProxyURL(target)
		if err != nil {
			return nil, err
		}
		proxies[name] = p
	}
	secret := []byte(cfg.JWTSecret)
	protected := func(name string) http.Handler { return authMiddleware(proxies[name], secret) }

	r := mux.NewRouter()
	r.Use(metrics.Middleware("api-gateway"))
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.PathPrefix("/internal").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "not found")
	})

	r.Handle("/api/users/register", proxies["users"]).Methods(http.MethodPost)
	r.Handle("/api/users/login", proxies["users"]).Methods(http.MethodPost)

	r.PathPrefix("/api/organizations/{orgId}/projects").Handler(protected("projects"))
	r.PathPrefix("/api/projects/{projectId}/tasks").Handler(protected("tasks"))

	r.PathPrefix("/api/users").Handler(protected("users"))
	r.PathPrefix("/api/organizations").Handler(protected("organizations"))
	r.PathPrefix("/api/projects").Handler(protected("projects"))
	r.PathPrefix("/api/tasks").Handler(protected("tasks"))
	r.PathPrefix("/api/dependencies").Handler(protected("tasks"))
	r.PathPrefix("/api/workflow").Handler(protected("workflow"))
	r.PathPrefix("/api/notifications").Handler(protected("notifications"))

	return enableCORS(r, cfg.CORSOrigin), nil
}
