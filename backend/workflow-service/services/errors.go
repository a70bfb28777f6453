package services

import "errors"

var (
	ErrTaskNodeNotFound   = errors.New("task node not found")
	ErrDependencyExists   = errors.New("dependency already exists")
	ErrDependencyNotFound = errors.New("dependency not found")
	ErrCycle              = errors.New("cannot add dependency: cycle detected")
	ErrSelfDependency     = errors.New("task cannot depend on itself")
)
