// Package contrib holds programs and helpers built on top of the OSM client
// that are not part of the core library.
//
// [github.com/osmx/osm-go/contrib/osmctl] is a command line tool for reading
// sections, members, events and finances from OSM.
//
// Note that this package is outside of the backward compatibility guarantees
// provided by the core library.
package contrib
