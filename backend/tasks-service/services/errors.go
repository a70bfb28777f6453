package services

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrDependencyNotFound  = errors.New("dependency not found")
	ErrInvalidID           = errors.New("invalid id format")
	ErrSelfReference       = errors.New("a task cannot reference itself")
	ErrCrossProject        = errors.New("tasks belong to different projects")
	ErrInactiveTask        = errors.New("task is not active")
	ErrCircularHierarchy   = errors.New("circular hierarchy detected")
	ErrCircularDependency  = errors.New("circular dependency detected")
	ErrDuplicateDependency = errors.New("dependency already exists")
	ErrUnfinishedDeps      = errors.New("cannot start task due to unfinished dependency")
	ErrHasSubtasks         = errors.New("task has active subtasks")
	ErrNotProjectMember    = errors.New("caller is not an active member of the project")
	ErrReadOnlyMember      = errors.New("project viewers cannot modify tasks")
	ErrAssigneeNotMember   = errors.New("assignee is not an active member of the project")
)
