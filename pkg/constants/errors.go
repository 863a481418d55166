package constants

import "errors"

// Errors
var (
	ErrConnection           = errors.New("could not connect to OSM")
	ErrOSM                  = errors.New("OSM returned an error")
	ErrNoActiveRoles        = errors.New("user has no active roles in OSM")
	ErrInvalidObject        = errors.New("object is invalid")
	ErrForbidden            = errors.New("forbidden")
	ErrNoCredentials        = errors.New("api id and token are not set")
	ErrNotFound             = errors.New("not found")
	ErrUnhandledContentType = errors.New("unhandled content type")
	ErrNoBaseURL            = errors.New("base url not set")
)
