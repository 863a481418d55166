package osm

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/osmx/osm-go/internal/util"
	"github.com/osmx/osm-go/pkg/cache"
	"github.com/osmx/osm-go/pkg/connection"
	osmhttp "github.com/osmx/osm-go/pkg/connection/http"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/rs/zerolog"
)

// API is a handle on OSM for one API application and, once authorised, one user.
// It is safe for concurrent use as long as the credentials are not changed meanwhile.
type API struct {
	conn   connection.Connection
	cache  *cache.Cache
	logger zerolog.Logger

	site   string
	apiID  string
	userID string
	secret string
}

type APIOption func(*API)

// WithCache enables read-through caching of Get functions
func WithCache(c *cache.Cache) APIOption {
	return func(a *API) {
		a.cache = c
	}
}

// WithConnection replaces the HTTP engine built from the Config
func WithConnection(conn connection.Connection) APIOption {
	return func(a *API) {
		a.conn = conn
	}
}

func WithLogger(logger zerolog.Logger) APIOption {
	return func(a *API) {
		a.logger = logger
	}
}

// WithCredentials uses a user's id and secret from an earlier Authorize
func WithCredentials(userID, secret string) APIOption {
	return func(a *API) {
		a.userID = userID
		a.secret = secret
	}
}

func New(conf *connection.Config, opts ...APIOption) (*API, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	a := &API{
		site:   conf.Site,
		apiID:  conf.APIID,
		logger: zerolog.Nop(),
	}
	if conf.Logger != nil {
		a.logger = *conf.Logger
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.conn == nil {
		a.conn = osmhttp.New(conf)
	}
	return a, nil
}

// Credentials identify a user who has authorised the API application.
type Credentials struct {
	UserID string `json:"user_id" yaml:"user_id"`
	Secret string `json:"secret" yaml:"secret"`
}

// Authorize signs a user in and makes the API act as them.
func (a *API) Authorize(ctx context.Context, email, password string) (*Credentials, error) {
	data, err := postInto[map[string]any](ctx, a, "users.php?action=authorise", url.Values{
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		return nil, err
	}

	creds := &Credentials{
		UserID: util.ToString(data["userid"]),
		Secret: util.ToString(data["secret"]),
	}
	if creds.UserID == "" || creds.Secret == "" {
		return nil, &connection.OSMError{Message: "authorisation did not return a user id and secret"}
	}
	a.userID = creds.UserID
	a.secret = creds.Secret
	a.logger.Info().Str("user_id", creds.UserID).Msg("authorised")
	return creds, nil
}

func (a *API) Site() string {
	return a.site
}

func (a *API) UserID() string {
	return a.userID
}

// Authorized reports whether user credentials are set
func (a *API) Authorized() bool {
	return a.userID != "" && a.secret != ""
}

// Post sends form to path and decodes the reply: map[string]any, []any or a
// scalar for JSON, []byte for images.
func (a *API) Post(ctx context.Context, path string, form url.Values) (any, error) {
	res, err := a.post(ctx, path, form)
	if err != nil {
		return nil, err
	}
	return res.Value()
}

// PostRaw returns the body of the reply without looking at it
func (a *API) PostRaw(ctx context.Context, path string, form url.Values) ([]byte, error) {
	res, err := a.post(ctx, path, form)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

func (a *API) post(ctx context.Context, path string, form url.Values) (*connection.Response, error) {
	f := url.Values{}
	for k, v := range form {
		f[k] = append([]string(nil), v...)
	}
	if a.Authorized() {
		f.Set("userid", a.userID)
		f.Set("secret", a.secret)
	}
	return a.conn.Post(ctx, path, f)
}

// postInto decodes the reply into T. A reply of another shape is an OSMError.
func postInto[T any](ctx context.Context, a *API, path string, form url.Values) (T, error) {
	var v T
	res, err := a.post(ctx, path, form)
	if err != nil {
		return v, err
	}
	if err := res.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// Option adjusts a single call.
type Option func(*callOptions)

type callOptions struct {
	noReadCache bool
}

// NoReadCache fetches from OSM even if a cached copy exists. The fresh copy is still cached.
func NoReadCache() Option {
	return func(o *callOptions) {
		o.noReadCache = true
	}
}

func collectOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (a *API) cacheKey(parts ...any) string {
	if a.cache == nil {
		return ""
	}
	return a.cache.Key(append([]any{a.site}, parts...)...)
}

// fetch is the read-through cache for Get functions; key parts follow the site in the key.
func fetch[T any](ctx context.Context, a *API, opts []Option, fn func() (T, error), key ...any) (T, error) {
	o := collectOptions(opts)
	return cache.Fetch(ctx, a.cache, a.cacheKey(key...), o.noReadCache, fn)
}

// invalidate drops cached collections; each argument is the parts of one key.
func (a *API) invalidate(ctx context.Context, keys ...[]any) {
	if a.cache == nil {
		return
	}
	full := make([]string, 0, len(keys))
	for _, parts := range keys {
		full = append(full, a.cacheKey(parts...))
	}
	_ = a.cache.Delete(ctx, full...)
}

// invalidateTerms drops a per-term collection of a section for every known term.
// Keys are kind, sectionID, parts, then the term id.
func (a *API) invalidateTerms(ctx context.Context, sectionID int, kind string, parts ...any) {
	if a.cache == nil {
		return
	}
	key := func(termID int) []any {
		k := append([]any{kind, sectionID}, parts...)
		return append(k, termID)
	}
	keys := [][]any{key(0)}
	terms, err := GetTermsForSection(ctx, a, sectionID)
	if err != nil {
		a.logger.Warn().Err(err).Int("section_id", sectionID).Msg("could not list terms to invalidate")
	}
	for _, t := range terms {
		keys = append(keys, key(t.ID))
	}
	a.invalidate(ctx, keys...)
}

// termOrCurrent resolves a term id of 0 to the section's current term, or 0 when it has none.
func (a *API) termOrCurrent(ctx context.Context, sectionID, termID int) (int, error) {
	if termID > 0 {
		return termID, nil
	}
	term, err := GetCurrentTerm(ctx, a, sectionID)
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return term.ID, nil
}

// formOf builds url.Values from OSM field names
func formOf(fields map[string]string) url.Values {
	v := url.Values{}
	for k, val := range fields {
		v.Set(k, val)
	}
	return v
}

func endpoint(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func isNotFound(err error) bool {
	return errors.Is(err, constants.ErrNotFound)
}
