package osmctl

import (
	"errors"
	"io"
	"strings"

	"github.com/osmx/osm-go"
	"github.com/osmx/osm-go/pkg/cache"
	"github.com/osmx/osm-go/pkg/connection"
	"github.com/osmx/osm-go/pkg/logger"
	"github.com/rs/zerolog"
)

// Session is an API opened from a Config along with the resources it holds.
type Session struct {
	API    *osm.API
	Logger zerolog.Logger

	closers []io.Closer
}

func Open(conf *Config) (*Session, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	s := &Session{}
	level := zerolog.WarnLevel
	if conf.Verbose {
		level = zerolog.DebugLevel
	}
	build := logger.New().WithLevel(level).Console()
	if conf.LogFile != "" {
		build = build.FromPath(conf.LogFile)
	}
	logData, err := build.Make()
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, logData)
	s.Logger = logData.Logger

	connConf, err := connection.NewConfig(conf.Site, conf.APIID, conf.Token)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if conf.BaseURL != "" {
		connConf.BaseURL = conf.BaseURL
	}
	connConf.Logger = &s.Logger

	opts := []osm.APIOption{osm.WithLogger(s.Logger)}
	if conf.UserID != "" && conf.Secret != "" {
		opts = append(opts, osm.WithCredentials(conf.UserID, conf.Secret))
	}

	store, err := s.openStore(conf)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if store != nil {
		opts = append(opts, osm.WithCache(cache.New(store,
			cache.WithTTL(conf.CacheTTL),
			cache.WithPrefix("osmctl-"+conf.UserID),
			cache.WithLogger(s.Logger),
		)))
	}

	if s.API, err = osm.New(connConf, opts...); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) openStore(conf *Config) (cache.Store, error) {
	switch conf.Cache {
	case CacheMemory:
		return cache.NewMemoryStore(), nil
	case CacheRedis:
		store := cache.NewRedisStoreFromAddrs(strings.Split(conf.RedisAddr, ","), "")
		s.closers = append(s.closers, store)
		return store, nil
	case CacheBolt:
		store, err := cache.OpenBoltStore(conf.CacheFile)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store)
		return store, nil
	}
	return nil, nil
}

// Close releases the cache store and the log file, newest first.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
