package model

import "fmt"

// NotFoundError is returned as 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError is returned as 409 when a resource is already claimed by a
// concurrent operation.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is busy", e.Resource, e.ID)
}

// AccessDeniedError is returned as 403 when a resource belongs to another user.
type AccessDeniedError struct {
	Resource string
	ID       string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to %s %s denied", e.Resource, e.ID)
}
