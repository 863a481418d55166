package osm

import (
	"fmt"

	"github.com/osmx/osm-go/pkg/constants"
)

// ForbiddenError is returned when the user or the API lacks a permission, or
// the section's subscription is too low.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func (e *ForbiddenError) Is(target error) bool {
	return target == constants.ErrForbidden
}

func forbidden(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}
