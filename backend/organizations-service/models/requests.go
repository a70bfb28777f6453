package models

type CreateOrganizationRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type AddMemberRequest struct {
	UserID int64            `json:"userId" validate:"required,gt=0"`
	Role   OrganizationRole `json:"role" validate:"omitempty,oneof=OrganizationAdmin OrganizationMember"`
}

type ChangeRoleRequest struct {
	Role OrganizationRole `json:"role" validate:"required,oneof=OrganizationAdmin OrganizationMember"`
}

type TransferOwnershipRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// BlockingRoles answers the deletion coordinator's veto query.
type BlockingRoles struct {
	UserID   int64    `json:"userId"`
	Blocking bool     `json:"blocking"`
	Reasons  []string `json:"reasons"`
}

type CleanupReport struct {
	UserID      int64 `json:"userId"`
	Deactivated int64 `json:"deactivated"`
}
