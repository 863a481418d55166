package connection

import (
	"fmt"

	"github.com/osmx/osm-go/pkg/constants"
)

// OSMError is an error reported by OSM inside an otherwise successful HTTP response.
type OSMError struct {
	Message string
}

func (e *OSMError) Error() string {
	return e.Message
}

func (e *OSMError) Is(target error) bool {
	return target == constants.ErrOSM
}

// ConnectionError is returned when OSM could not be reached or answered with a non-200 status.
type ConnectionError struct {
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", constants.ErrConnection, e.Err)
	}
	return fmt.Sprintf("HTTP Status code was %d", e.StatusCode)
}

func (e *ConnectionError) Is(target error) bool {
	return target == constants.ErrConnection
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
