package repositories

import (
	"context"
	"fmt"

	"projecthub/backend/workflow-service/models"
	"projecthub/backend/workflow-service/services"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphStore keeps (:Task) nodes and [:DEPENDS_ON] relations in Neo4j.
type GraphStore struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewGraphStore(driver neo4j.DriverWithContext, database string) *GraphStore {
	return &GraphStore{driver: driver, database: database}
}

func (s *GraphStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *GraphStore) write(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

func (s *GraphStore) read(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, work)
}

func (s *GraphStore) EnsureConstraints(ctx context.Context) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE`, nil)
		return nil, err
	})
	return err
}

func (s *GraphStore) UpsertNode(ctx context.Context, node models.TaskNode) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (t:Task {id: $id})
			ON CREATE SET t.blocked = false
			SET t.projectId = $projectId,
				t.title = $title,
				t.status = $status
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":        node.ID,
			"projectId": node.ProjectID,
			"title":     node.Title,
			"status":    node.Status,
		})
		return nil, err
	})
	return err
}

const nodeColumns = `n.id AS id, n.projectId AS projectId, n.title AS title, n.status AS status, n.blocked AS blocked`

func (s *GraphStore) FindNode(ctx context.Context, id string) (*models.TaskNode, error) {
	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (n:Task {id: $id}) RETURN `+nodeColumns, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		node := recordToNode(res.Record())
		return &node, nil
	})
	if err != nil {
		return nil, err
	}
	node, _ := result.(*models.TaskNode)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", services.ErrTaskNodeNotFound, id)
	}
	return node, nil
}

func (s *GraphStore) EdgeExists(ctx context.Context, edge models.DependencyEdge) (bool, error) {
	return s.readBool(ctx, `
		OPTIONAL MATCH (t:Task {id: $taskId})-[r:DEPENDS_ON]->(d:Task {id: $dependsOn})
		RETURN r IS NOT NULL AS exists
	`, map[string]any{"taskId": edge.TaskID, "dependsOn": edge.DependsOnTaskID})
}

func (s *GraphStore) PathExists(ctx context.Context, from, to string) (bool, error) {
	if from == to {
		return true, nil
	}
	return s.readBool(ctx, `
		MATCH (a:Task {id: $from}), (b:Task {id: $to})
		RETURN EXISTS { MATCH (a)-[:DEPENDS_ON*1..]->(b) } AS reachable
	`, map[string]any{"from": from, "to": to})
}

func (s *GraphStore) readBool(ctx context.Context, query string, params map[string]any) (bool, error) {
	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			val, ok := res.Record().Values[0].(bool)
			if !ok {
				return false, fmt.Errorf("unexpected result type %T", res.Record().Values[0])
			}
			return val, nil
		}
		return false, res.Err()
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *GraphStore) CreateEdge(ctx context.Context, edge models.DependencyEdge) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (t:Task {id: $taskId}), (d:Task {id: $dependsOn})
			MERGE (t)-[:DEPENDS_ON]->(d)
		`
		_, err := tx.Run(ctx, query, map[string]any{"taskId": edge.TaskID, "dependsOn": edge.DependsOnTaskID})
		return nil, err
	})
	return err
}

func (s *GraphStore) DeleteEdge(ctx context.Context, edge models.DependencyEdge) (bool, error) {
	result, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (t:Task {id: $taskId})-[r:DEPENDS_ON]->(d:Task {id: $dependsOn})
			DELETE r
		`
		res, err := tx.Run(ctx, query, map[string]any{"taskId": edge.TaskID, "dependsOn": edge.DependsOnTaskID})
		if err != nil {
			return false, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return false, err
		}
		return summary.Counters().RelationshipsDeleted() > 0, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *GraphStore) collectNodes(ctx context.Context, query string, params map[string]any) ([]models.TaskNode, error) {
	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		nodes := []models.TaskNode{}
		for res.Next(ctx) {
			nodes = append(nodes, recordToNode(res.Record()))
		}
		return nodes, res.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.TaskNode), nil
}

func (s *GraphStore) Dependencies(ctx context.Context, taskID string) ([]models.TaskNode, error) {
	return s.collectNodes(ctx, `
		MATCH (:Task {id: $taskId})-[:DEPENDS_ON]->(n:Task)
		RETURN `+nodeColumns+` ORDER BY n.id
	`, map[string]any{"taskId": taskID})
}

func (s *GraphStore) Dependents(ctx context.Context, taskID string) ([]string, error) {
	nodes, err := s.collectNodes(ctx, `
		MATCH (n:Task)-[:DEPENDS_ON]->(:Task {id: $taskId})
		RETURN `+nodeColumns+` ORDER BY n.id
	`, map[string]any{"taskId": taskID})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids, nil
}

func (s *GraphStore) SetBlocked(ctx context.Context, taskID string, blocked bool) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `MATCH (t:Task {id: $taskId}) SET t.blocked = $blocked`, map[string]any{
			"taskId":  taskID,
			"blocked": blocked,
		})
		return nil, err
	})
	return err
}

func (s *GraphStore) ProjectGraph(ctx context.Context, projectID string) ([]models.TaskNode, []models.DependencyEdge, error) {
	nodes, err := s.collectNodes(ctx, `
		MATCH (n:Task {projectId: $projectId})
		RETURN `+nodeColumns+` ORDER BY n.id
	`, map[string]any{"projectId": projectID})
	if err != nil {
		return nil, nil, err
	}

	result, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (t:Task {projectId: $projectId})-[:DEPENDS_ON]->(d:Task)
			RETURN t.id AS taskId, d.id AS dependsOn ORDER BY taskId, dependsOn
		`, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}
		edges := []models.DependencyEdge{}
		for res.Next(ctx) {
			rec := res.Record()
			edges = append(edges, models.DependencyEdge{
				TaskID:          stringValue(rec, "taskId"),
				DependsOnTaskID: stringValue(rec, "dependsOn"),
			})
		}
		return edges, res.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	return nodes, result.([]models.DependencyEdge), nil
}

func recordToNode(rec *neo4j.Record) models.TaskNode {
	blocked, _ := rec.AsMap()["blocked"].(bool)
	return models.TaskNode{
		ID:        stringValue(rec, "id"),
		ProjectID: stringValue(rec, "projectId"),
		Title:     stringValue(rec, "title"),
		Status:    stringValue(rec, "status"),
		Blocked:   blocked,
	}
}

func stringValue(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}
