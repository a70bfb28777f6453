package services

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidID            = errors.New("invalid organization id")
	ErrNameTaken            = errors.New("organization name already exists")
	ErrMemberNotFound       = errors.New("membership not found")
	ErrAlreadyMember        = errors.New("user is already a member of the organization")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotMember            = errors.New("caller is not a member of the organization")
	ErrForbidden            = errors.New("insufficient organization role")
	ErrOwnerRoleChange      = errors.New("owner role changes only through ownership transfer")
	ErrLastOwner            = errors.New("cannot remove the last owner of the organization")
	ErrTransferToSelf       = errors.New("cannot transfer ownership to yourself")
)
