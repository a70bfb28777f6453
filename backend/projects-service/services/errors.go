package services

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidID       = errors.New("invalid project id")
	ErrInvalidDates    = errors.New("expected end date must not be before start date")
	ErrMemberNotFound  = errors.New("membership not found")
	ErrAlreadyMember   = errors.New("user is already a member of the project")
	ErrNotOrgMember    = errors.New("user is not a member of the organization")
	ErrNotMember       = errors.New("caller is not a member of the project")
	ErrForbidden       = errors.New("only project managers can do this")
	ErrLastManager     = errors.New("cannot remove or demote the last project manager")
	ErrProjectFull     = errors.New("project has reached its member limit")
	ErrNameTaken       = errors.New("project name already exists")
)
