package constants

import "time"

// Sites
const (
	SiteOSM        = "osm"
	SiteOSMStaging = "osm_staging"
)

var SiteURLs = map[string]string{
	SiteOSM:        "https://www.onlinescoutmanager.co.uk",
	SiteOSMStaging: "https://staging.onlinescoutmanager.co.uk",
}

const (
	// DefaultHTTPTimeout is applied to the http.Client unless replaced
	DefaultHTTPTimeout = 10 * time.Second
	// DefaultCacheTTL is how long a fetched collection stays cached
	DefaultCacheTTL = 600 * time.Second
	// CacheKeyPrefix is the fixed part that leads every cache key
	CacheKeyPrefix = "OSMAPI"
	// Version is written into cache keys so an upgrade never reads stale shapes
	Version = "1.0.0"
)

// Permission levels as OSM reports them per section
const (
	PermissionLevelRead       = 10
	PermissionLevelWrite      = 20
	PermissionLevelAdminister = 100
)

// Environment variables
const (
	EnvAPIID    = "OSMX_OSM_ID"
	EnvAPIToken = "OSMX_OSM_TOKEN"
	EnvSite     = "OSMX_OSM_SITE"
)
