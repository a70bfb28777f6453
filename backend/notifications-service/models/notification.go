package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Notification struct {
	ID        gocql.UUID `cassandra:"id" json:"id"`
	UserID    int64      `cassandra:"user_id" json:"userId"`
	Message   string     `cassandra:"message" json:"message"`
	CreatedAt time.Time  `cassandra:"created_at" json:"createdAt"`
	IsRead    bool       `cassandra:"is_read" json:"isRead"`
}

type CreateNotificationRequest struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Message string `json:"message" validate:"required,max=1000"`
}
