package services

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidID            = errors.New("invalid notification id")
)
