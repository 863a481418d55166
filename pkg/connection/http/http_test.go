package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/osmx/osm-go/pkg/connection"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/stretchr/testify/suite"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewTestClient returns *http.Client with Transport replaced to avoid making real calls
func NewTestClient(fn RoundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

func respond(status int, contentType, body string) *http.Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		// Must be set to non-nil value or it panics
		Header: header,
	}
}

type HTTPTestSuite struct {
	suite.Suite
	config *connection.Config
}

func TestHttpTestSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}

func (s *HTTPTestSuite) SetupTest() {
	s.config = &connection.Config{
		BaseURL: "http://test.osm/",
		APIID:   "1",
		Token:   "API TOKEN",
	}
}

func (s *HTTPTestSuite) TestPostAddsCredentials() {
	var seen *http.Request
	var form url.Values
	engine := New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) (*http.Response, error) {
		seen = req
		s.Require().NoError(req.ParseForm())
		form = req.PostForm
		return respond(200, "application/json; charset=utf-8", `{"ok":true}`), nil
	}))

	res, err := engine.Post(context.TODO(), "events.php?action=getEvents&sectionid=1", url.Values{"userid": {"2"}, "secret": {"s"}})
	s.Require().NoError(err)

	s.Equal(http.MethodPost, seen.Method)
	s.Equal("http://test.osm/events.php?action=getEvents&sectionid=1", seen.URL.String())
	s.Equal("application/x-www-form-urlencoded", seen.Header.Get("Content-Type"))
	s.NotEmpty(seen.Header.Get("X-Request-Id"))
	s.Equal("1", form.Get("apiid"))
	s.Equal("API TOKEN", form.Get("token"))
	s.Equal("2", form.Get("userid"))
	s.Equal("s", form.Get("secret"))
	s.Equal("application/json", res.ContentType)
	s.Equal(`{"ok":true}`, string(res.Body))
}

func (s *HTTPTestSuite) TestPostDoesNotMutateCallerForm() {
	engine := New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(200, "application/json", `{}`), nil
	}))

	form := url.Values{"name": {"x"}}
	_, err := engine.Post(context.TODO(), "path", form)
	s.Require().NoError(err)
	s.Equal(url.Values{"name": {"x"}}, form)
}

func (s *HTTPTestSuite) TestNon200IsConnectionError() {
	engine := New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) (*http.Response, error) {
		return respond(500, "text/html", "oops"), nil
	}))

	_, err := engine.Post(context.TODO(), "path", nil)
	s.Require().Error(err, "should return error for status code 500")
	s.True(errors.Is(err, constants.ErrConnection))
	s.Equal("HTTP Status code was 500", err.Error())
}

func (s *HTTPTestSuite) TestTransportFailureIsConnectionError() {
	boom := errors.New("connection refused")
	engine := New(s.config).SetHTTPClient(NewTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, boom
	}))

	_, err := engine.Post(context.TODO(), "path", nil)
	s.Require().Error(err)
	s.True(errors.Is(err, constants.ErrConnection))
	s.True(errors.Is(err, boom))
}

func (s *HTTPTestSuite) TestMissingBaseURL() {
	s.config.BaseURL = ""
	_, err := New(s.config).Post(context.TODO(), "path", nil)
	s.ErrorIs(err, constants.ErrNoBaseURL)
}
