package models

import "time"

type CreateProjectRequest struct {
	OrganizationID  string     `json:"organizationId" validate:"required,len=24,hexadecimal"`
	Name            string     `json:"name" validate:"required,min=2,max=100"`
	Description     string     `json:"description" validate:"max=1000"`
	StartDate       *time.Time `json:"startDate"`
	ExpectedEndDate *time.Time `json:"expectedEndDate"`
	MaxMembers      int        `json:"maxMembers" validate:"gte=0,lte=1000"`
}

type AddMemberRequest struct {
	UserID int64       `json:"userId" validate:"required,gt=0"`
	Role   ProjectRole `json:"role" validate:"omitempty,oneof=ProjectManager ProjectMember ProjectViewer"`
}

type ChangeRoleRequest struct {
	Role ProjectRole `json:"role" validate:"required,oneof=ProjectManager ProjectMember ProjectViewer"`
}

type BlockingRoles struct {
	UserID   int64    `json:"userId"`
	Blocking bool     `json:"blocking"`
	Reasons  []string `json:"reasons"`
}

type CleanupReport struct {
	UserID      int64 `json:"userId"`
	Deactivated int64 `json:"deactivated"`
}
