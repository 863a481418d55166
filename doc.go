// Package osm is a client for the Online Scout Manager API.
//
// # Connecting
//
// An [API] is created from a [connection.Config], normally through
// [ConfigFromEnv] which reads the application's id and token from
// OSMX_OSM_ID and OSMX_OSM_TOKEN. A user then signs in with [API.Authorize]
// or supplies stored credentials with [WithCredentials].
//
// # Resources
//
// Every resource has free functions taking a context and the API, for
// example [GetMembers] or [UpdateEvent]. Get functions are read-through
// cached when the API was created [WithCache]; pass [NoReadCache] to skip
// the cached copy. Records returned by Get functions remember the values
// they were loaded with, so Update functions only send what changed.
//
// Create, Update and Delete functions return (bool, error). The error is
// set for invalid records ([constants.ErrInvalidObject]), missing
// permissions ([constants.ErrForbidden]) and failed requests. A false
// result with a nil error means OSM answered without confirming the change.
package osm
