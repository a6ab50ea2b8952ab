package services

import (
	"errors"
	"fmt"
	"time"
)

// Business failures are expected outcomes: each carries what the caller
// needs for a precise user message, and none of them leaves any state
// behind.
var (
	ErrTokenNotFound      = errors.New("token not found or inactive")
	ErrPrizeNotFound      = errors.New("prize not found or inactive")
	ErrOutOfStock         = errors.New("prize out of stock")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTransient surfaces a commit that kept losing write races after
	// the bounded retries; the caller may simply try again.
	ErrTransient = errors.New("storage conflict, try again")
)

type OutOfRangeError struct {
	DistanceMeters int
	RadiusMeters   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("scan location is %dm from the token, must be within %dm", e.DistanceMeters, e.RadiusMeters)
}

type AlreadyScannedError struct {
	NextEligibleAt time.Time
}

func (e *AlreadyScannedError) Error() string {
	return fmt.Sprintf("token already scanned, next eligible at %s", e.NextEligibleAt.Format(time.RFC3339))
}

type InsufficientPointsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d, have %d", e.Required, e.Available)
}
