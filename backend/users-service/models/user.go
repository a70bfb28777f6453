package models

import "time"

const (
	RoleUser        = "User"
	RoleSystemAdmin = "SystemAdmin"
)

type User struct {
	ID        int64      `bson:"_id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	LastName  string     `bson:"lastName" json:"lastName"`
	Username  string     `bson:"username" json:"username"`
	Password  string     `bson:"password" json:"-"`
	Email     string     `bson:"email" json:"email"`
	Role      string     `bson:"role" json:"role"`
	IsActive  bool       `bson:"isActive" json:"isActive"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	DeletedAt *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	DeletedBy *int64     `bson:"deletedBy,omitempty" json:"deletedBy,omitempty"`
}

// Deleted reports whether the account was removed by the deletion coordinator.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	LastName string `json:"lastName" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=User SystemAdmin"`
}
