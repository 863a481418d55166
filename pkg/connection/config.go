package connection

import (
	"fmt"
	"time"

	"github.com/osmx/osm-go/pkg/constants"
	"github.com/rs/zerolog"
)

// Config holds what an engine needs to reach OSM on behalf of an API application.
type Config struct {
	// Site is one of the keys of constants.SiteURLs
	Site string
	// BaseURL is derived from Site by NewConfig but may be pointed elsewhere (tests, proxies)
	BaseURL string
	// APIID and Token identify the API application registered with OSM
	APIID string
	Token string
	// Timeout applied to every HTTP request
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// NewConfig creates a new Config for one of the known OSM sites.
// It is not absolutely necessary to create a Config using this function,
// but it is recommended to use this function to ensure that everything needed for the connection is set up correctly.
func NewConfig(site, apiID, token string) (*Config, error) {
	if site == "" {
		site = constants.SiteOSM
	}
	baseURL, ok := constants.SiteURLs[site]
	if !ok {
		return nil, fmt.Errorf("unknown site %q", site)
	}
	nop := zerolog.Nop()
	return &Config{
		Site:    site,
		BaseURL: baseURL,
		APIID:   apiID,
		Token:   token,
		Timeout: constants.DefaultHTTPTimeout,
		Logger:  &nop,
	}, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if c.APIID == "" || c.Token == "" {
		return constants.ErrNoCredentials
	}
	return nil
}
