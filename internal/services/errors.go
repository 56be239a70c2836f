package services

import "errors"

// Sentinel errors shared by the service layer. Handlers map these onto
// HTTP status codes; services return them wrapped so callers can use
// errors.Is.
var (
	// ErrInvalidReference is returned when a supplied identifier is
	// malformed or points at a document of the wrong shape.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidStatus is returned when an order status transition is
	// not allowed from the order's current status.
	ErrInvalidStatus = errors.New("invalid status transition")

	// ErrOwnerNotFound is returned when a listing's owner account does
	// not exist at the moment the listing is created.
	ErrOwnerNotFound = errors.New("owner account not found")

	// ErrUnauthorized is returned when the caller is not the party
	// allowed to perform the operation.
	ErrUnauthorized = errors.New("not authorized")

	// ErrUserExists is returned on signup when the phone or email is
	// already registered.
	ErrUserExists = errors.New("account already exists")

	// ErrNotVerified is returned on login when the account has not
	// completed phone verification.
	ErrNotVerified = errors.New("account not verified")

	// ErrInvalidCredentials is returned on login when the phone or
	// password does not match.
	ErrInvalidCredentials = errors.New("invalid phone or password")
)
