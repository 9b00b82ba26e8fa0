package session

import (
	"errors"
	"fmt"
)

// ErrTimeout is the common sentinel for every bounded-wait expiry. Callers
// use it to message "taking too long" instead of "rejected"; the named
// wrappers below identify which operation ran out of time.
var ErrTimeout = errors.New("operation timed out")

var (
	ErrAuthTimeout          = fmt.Errorf("auth-timeout: %w", ErrTimeout)
	ErrProfileFetchTimeout  = fmt.Errorf("profile-fetch-timeout: %w", ErrTimeout)
	ErrProfileCreateTimeout = fmt.Errorf("profile-create-timeout: %w", ErrTimeout)
)

// ErrStore marks data-store failures (constraint violations, connectivity),
// as opposed to provider rejections.
var ErrStore = errors.New("data store error")

// ErrProfileMismatch marks the invariant violation where a created profile
// row does not carry the provider-issued user id. The coordinator deletes
// the malformed row before surfacing this.
var ErrProfileMismatch = errors.New("created profile does not match provider identity")
