package handlers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"projecthub/backend/workflow-service/models"
	"projecthub/backend/workflow-service/services"
)

type memGraph struct {
	mu    sync.Mutex
	nodes map[string]models.TaskNode
	edges map[models.DependencyEdge]bool
}

func newMemGraph() *memGraph {
	return &memGraph{nodes: map[string]models.TaskNode{}, edges: map[models.DependencyEdge]bool{}}
}

func (g *memGraph) UpsertNode(_ context.Context, node models.TaskNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	node.Blocked = g.nodes[node.ID].Blocked
	g.nodes[node.ID] = node
	return nil
}

func (g *memGraph) FindNode(_ context.Context, id string) (*models.TaskNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrTaskNodeNotFound, id)
	}
	return &n, nil
}

func (g *memGraph) EdgeExists(_ context.Context, edge models.DependencyEdge) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.edges[edge], nil
}

func (g *memGraph) PathExists(_ context.Context, from, to string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seen := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true, nil
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for e := range g.edges {
			if e.TaskID == cur {
				stack = append(stack, e.DependsOnTaskID)
			}
		}
	}
	return false, nil
}

func (g *memGraph) CreateEdge(_ context.Context, edge models.DependencyEdge) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges[edge] = true
	return nil
}

func (g *memGraph) DeleteEdge(_ context.Context, edge models.DependencyEdge) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.edges[edge] {
		return false, nil
	}
	delete(g.edges, edge)
	return true, nil
}

func (g *memGraph) Dependencies(_ context.Context, taskID string) ([]models.TaskNode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []models.TaskNode{}
	for e := range g.edges {
		if e.TaskID == taskID {
			out = append(out, g.nodes[e.DependsOnTaskID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *memGraph) Dependents(_ context.Context, taskID string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []string{}
	for e := range g.edges {
		if e.DependsOnTaskID == taskID {
			out = append(out, e.TaskID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (g *memGraph) SetBlocked(_ context.Context, taskID string, blocked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[taskID]
	if !ok {
		return nil
	}
	n.Blocked = blocked
	g.nodes[taskID] = n
	return nil
}

func (g *memGraph) ProjectGraph(_ context.Context, projectID string) ([]models.TaskNode, []models.DependencyEdge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	nodes := []models.TaskNode{}
	for _, n := range g.nodes {
		if n.ProjectID == projectID {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	edges := []models.DependencyEdge{}
	for e := range g.edges {
		if g.nodes[e.TaskID].ProjectID == projectID {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].TaskID != edges[j].TaskID {
			return edges[i].TaskID < edges[j].TaskID
		}
		return edges[i].DependsOnTaskID < edges[j].DependsOnTaskID
	})
	return nodes, edges, nil
}
