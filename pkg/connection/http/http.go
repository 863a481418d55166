package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/osmx/osm-go/pkg/connection"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/rs/zerolog"
)

type HTTPConnection struct {
	BaseURL string
	APIID   string
	Token   string

	logger     zerolog.Logger
	httpClient *http.Client
}

func New(p *connection.Config) *HTTPConnection {
	con := HTTPConnection{
		BaseURL: strings.TrimSuffix(p.BaseURL, "/"),
		APIID:   p.APIID,
		Token:   p.Token,
		logger:  zerolog.Nop(),
	}
	if p.Logger != nil {
		con.logger = *p.Logger
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}
	con.httpClient = &http.Client{
		Timeout: timeout, // Set a default timeout to avoid hanging requests
	}

	return &con
}

func (h *HTTPConnection) SetTimeout(timeout time.Duration) *HTTPConnection {
	h.httpClient.Timeout = timeout
	return h
}

func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// Post sends form to path (relative to the base URL, query string allowed) with the
// application's apiid and token added.
func (h *HTTPConnection) Post(ctx context.Context, path string, form url.Values) (*connection.Response, error) {
	if h.BaseURL == "" {
		return nil, constants.ErrNoBaseURL
	}

	body := url.Values{}
	for k, v := range form {
		body[k] = v
	}
	body.Set("apiid", h.APIID)
	body.Set("token", h.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/"+strings.TrimPrefix(path, "/"), strings.NewReader(body.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-Id", uuid.NewString())

	return h.MakeRequest(req)
}

func (h *HTTPConnection) MakeRequest(req *http.Request) (*connection.Response, error) {
	started := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.Debug().Err(err).Str("path", req.URL.Path).Msg("request failed")
		return nil, &connection.ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &connection.ConnectionError{Err: err}
	}

	contentType := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	h.logger.Debug().
		Str("request_id", req.Header.Get("X-Request-Id")).
		Str("path", req.URL.Path).
		Str("action", req.URL.Query().Get("action")).
		Int("status", resp.StatusCode).
		Str("content_type", contentType).
		Dur("duration", time.Since(started)).
		Msg("osm request")

	if resp.StatusCode != http.StatusOK {
		return nil, &connection.ConnectionError{StatusCode: resp.StatusCode}
	}

	return &connection.Response{
		ContentType: strings.ToLower(contentType),
		Body:        respBytes,
	}, nil
}
