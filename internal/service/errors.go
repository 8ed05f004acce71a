package service

import "errors"

var (
	// ErrUnauthenticated is returned by membership-scoped detail
	// operations when no subject could be resolved. Summary reads never
	// return it; they serve zero-valued defaults instead.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNotMember is returned when a subject requests a group ledger
	// they are not a member of. An explicit failure, never empty data:
	// "no balance" and "not allowed" must not be confusable.
	ErrNotMember = errors.New("not a member of this group")
)
