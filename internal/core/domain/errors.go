package domain

import "errors"

// Session and token errors.
var (
	ErrSessionAbsent         = errors.New("session absent")
	ErrMalformedSession      = errors.New("malformed session")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// Authentication and authorization errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrPrincipalExists    = errors.New("principal already exists")
	ErrInvalidPrincipal   = errors.New("invalid principal")
)

// Order errors.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already placed today")
	ErrClosedDay      = errors.New("orders are not accepted today")
)
