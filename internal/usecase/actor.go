package usecase

import (
	"fmt"
	"strings"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Admin  bool
}

func requireAdmin(actor Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return fmt.Errorf("%w: missing caller identity", ErrUnauthorized)
	}
	if !actor.Admin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}
