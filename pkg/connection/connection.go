package connection

import (
	"context"
	"net/url"
)

// Connection is an engine able to POST a form to an OSM path.
// Implementations add the API application's credentials to every form.
type Connection interface {
	Post(ctx context.Context, path string, form url.Values) (*Response, error)
}
