package osmctl

import (
	"errors"
	"fmt"
	"time"

	"github.com/osmx/osm-go/pkg/constants"
	"github.com/spf13/viper"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBolt   = "bolt"
)

// Settings keys, shared by flags, OSMX_* variables and osmctl.yaml
const (
	keyConfig    = "config"
	keySite      = "site"
	keyBaseURL   = "base-url"
	keyAPIID     = "osm-id"
	keyToken     = "osm-token"
	keyUserID    = "user_id"
	keySecret    = "secret"
	keyFormat    = "format"
	keyCache     = "cache"
	keyRedisAddr = "redis-addr"
	keyCacheFile = "cache-file"
	keyCacheTTL  = "cache-ttl"
	keyLogFile   = "log-file"
	keyVerbose   = "verbose"
)

// Config is what a command needs to talk to OSM.
type Config struct {
	Site    string
	BaseURL string
	APIID   string
	Token   string

	// UserID and Secret are written by the authorize command
	UserID string
	Secret string

	Format    string
	Cache     string
	RedisAddr string
	CacheFile string
	CacheTTL  time.Duration

	LogFile string
	Verbose bool

	// ConfigFile receives the credentials from authorize
	ConfigFile string
}

func NewConfig() *Config {
	return &Config{
		Site:       constants.SiteOSM,
		Format:     FormatJSON,
		Cache:      CacheMemory,
		RedisAddr:  "localhost:6379",
		CacheFile:  "osmctl.cache",
		CacheTTL:   constants.DefaultCacheTTL,
		ConfigFile: "osmctl.yaml",
	}
}

// ConfigFromViper reads every setting, falling back to NewConfig's defaults.
func ConfigFromViper(v *viper.Viper) *Config {
	c := NewConfig()
	setString := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	setString(keySite, &c.Site)
	setString(keyBaseURL, &c.BaseURL)
	setString(keyAPIID, &c.APIID)
	setString(keyToken, &c.Token)
	setString(keyUserID, &c.UserID)
	setString(keySecret, &c.Secret)
	setString(keyFormat, &c.Format)
	setString(keyCache, &c.Cache)
	setString(keyRedisAddr, &c.RedisAddr)
	setString(keyCacheFile, &c.CacheFile)
	setString(keyLogFile, &c.LogFile)
	if ttl := v.GetDuration(keyCacheTTL); ttl != 0 {
		c.CacheTTL = ttl
	}
	c.Verbose = v.GetBool(keyVerbose)
	if used := v.ConfigFileUsed(); used != "" {
		c.ConfigFile = used
	}
	return c
}

func (c *Config) Validate() error {
	if c.APIID == "" || c.Token == "" {
		return fmt.Errorf("set %s and %s: %w", keyAPIID, keyToken, constants.ErrNoCredentials)
	}
	if _, ok := constants.SiteURLs[c.Site]; !ok {
		return fmt.Errorf("unknown site %q", c.Site)
	}
	switch c.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	switch c.Cache {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return errors.New("redis cache needs an address")
		}
	case CacheBolt:
		if c.CacheFile == "" {
			return errors.New("bolt cache needs a file")
		}
	default:
		return fmt.Errorf("unknown cache %q", c.Cache)
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache ttl must be positive")
	}
	return nil
}
