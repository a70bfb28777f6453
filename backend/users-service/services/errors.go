package services

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrSelfDeletion       = errors.New("cannot delete self")
	ErrLastSystemAdmin    = errors.New("cannot delete: last system administrator")
	ErrLastAdminDemotion  = errors.New("cannot demote the last system administrator")
)

// BlockingRolesError lists every sole-authority role that prevents a deletion.
type BlockingRolesError struct {
	Reasons []string
}

func (e *BlockingRolesError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

// CleanupError reports the saga step that failed. Earlier steps stay applied.
type CleanupError struct {
	Service string
	Err     error
}

func (e *CleanupError) Error() string {
	return "cleanup failed in " + e.Service + ": retry"
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// CheckError is an infrastructure failure while asking a service for blocking roles.
type CheckError struct {
	Service string
	Err     error
}

func (e *CheckError) Error() string {
	return "blocking-role check failed in " + e.Service + ": " + e.Err.Error()
}

func (e *CheckError) Unwrap() error {
	return e.Err
}
