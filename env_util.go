package osm

import (
	"os"
	"strings"

	"github.com/osmx/osm-go/pkg/connection"
	"github.com/osmx/osm-go/pkg/constants"
)

// GetEnvOrDefault reads key, falling back to its lowercase spelling and then defaultValue.
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = os.Getenv(strings.ToLower(key))
	}
	if value == "" {
		return defaultValue
	}

	return value
}

// ConfigFromEnv builds a connection.Config from OSMX_OSM_ID, OSMX_OSM_TOKEN and OSMX_OSM_SITE.
func ConfigFromEnv() (*connection.Config, error) {
	conf, err := connection.NewConfig(
		GetEnvOrDefault(constants.EnvSite, constants.SiteOSM),
		GetEnvOrDefault(constants.EnvAPIID, ""),
		GetEnvOrDefault(constants.EnvAPIToken, ""),
	)
	if err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}
