package models

// TaskNode is the read-model copy of a task.
type TaskNode struct {
	ID        string `json:"id" validate:"required,len=24,hexadecimal"`
	ProjectID string `json:"projectId" validate:"required"`
	Title     string `json:"title" validate:"required,max=200"`
	Status    string `json:"status" validate:"required,oneof=ToDo InProgress InReview Done Cancelled"`
	Blocked   bool   `json:"blocked"`
}

// Closed reports whether the node no longer holds back its dependents.
func (n TaskNode) Closed() bool {
	return n.Status == "Done" || n.Status == "Cancelled"
}

// DependencyEdge says TaskID cannot finish before DependsOnTaskID.
type DependencyEdge struct {
	TaskID          string `json:"taskId" validate:"required,len=24,hexadecimal"`
	DependsOnTaskID string `json:"dependsOnTaskId" validate:"required,len=24,hexadecimal"`
}

type ProjectGraph struct {
	ProjectID string           `json:"projectId"`
	Nodes     []TaskNode       `json:"nodes"`
	Edges     []DependencyEdge `json:"edges"`
}
