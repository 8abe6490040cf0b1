package services

import (
	"errors"
	"slices"

	"pos-api/models"
)

// Actor is the authenticated principal performing a call, plus the client
// address stamped on audit rows.
type Actor struct {
	UserID    uint
	Role      string
	IPAddress string
}

func (a *Actor) userID() *uint {
	if a == nil || a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

func (a *Actor) ip() string {
	if a == nil {
		return ""
	}
	return a.IPAddress
}

// authorize rejects a missing actor with ErrUnauthorized and, when roles are
// given, an actor outside them with ErrForbidden.
func authorize(actor *Actor, roles ...string) error {
	if actor == nil || actor.UserID == 0 {
		return ErrUnauthorized
	}
	if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
		return ErrForbidden
	}
	return nil
}

var adminOnly = []string{models.RoleAdmin}

var domainErrors = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrDuplicateSku,
	ErrDuplicateCategory,
	ErrDuplicateUsername,
	ErrInsufficientStock,
	ErrInsufficientPayment,
	ErrEmptyCart,
	ErrUnauthorized,
	ErrForbidden,
	ErrProductInUse,
	ErrPersistence,
}

// txError passes domain errors through and wraps anything else, such as a
// failed commit, as a persistence failure.
func txError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	return persistence(op, err)
}
