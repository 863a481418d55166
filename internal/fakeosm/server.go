// Package fakeosm provides a fake Online Scout Manager HTTP server for testing purposes.
// It answers form POSTs the way OSM does: JSON sent as application/json or
// text/html, member photos as image/jpeg, and plain text errors.
//
// Stub responses are matched by path and the `action` query parameter, e.g.
// "events.php?action=getEvents". Every request is recorded so tests can
// assert the exact form fields that were posted.
//
// Routing is implemented using the gorilla/mux library.
package fakeosm

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// StubResponse is a canned reply for one endpoint.
type StubResponse struct {
	// Status defaults to 200
	Status      int
	ContentType string
	Body        []byte
}

// Request is what the server saw for one call
type Request struct {
	Path   string
	Action string
	Query  url.Values
	Form   url.Values
}

type endpoint struct {
	path   string
	action string
}

// Server is a fake OSM backed by httptest.Server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	router   *mux.Router
	stubs    map[endpoint][]StubResponse
	routes   map[endpoint]bool
	requests []Request
}

func New() *Server {
	s := &Server{
		router: mux.NewRouter(),
		stubs:  map[endpoint][]StubResponse{},
		routes: map[endpoint]bool{},
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		http.Error(w, fmt.Sprintf("no stub for %s?action=%s", r.URL.Path, r.URL.Query().Get("action")), http.StatusNotFound)
	})
	s.Server = httptest.NewServer(s.router)
	return s
}

func parseEndpoint(target string) endpoint {
	u, err := url.Parse("/" + strings.TrimPrefix(target, "/"))
	if err != nil {
		panic(fmt.Sprintf("fakeosm: bad endpoint %q: %v", target, err))
	}
	return endpoint{path: u.Path, action: u.Query().Get("action")}
}

// Stub queues a response for target. Queued responses are served in order
// and the last one keeps being served.
func (s *Server) Stub(target string, stub StubResponse) {
	ep := parseEndpoint(target)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.routes[ep] {
		s.routes[ep] = true
		route := s.router.Path(ep.path).Methods(http.MethodPost)
		if ep.action != "" {
			route = route.Queries("action", ep.action)
		}
		route.HandlerFunc(s.handler(ep))
	}
	s.stubs[ep] = append(s.stubs[ep], stub)
}

// JSON queues body marshalled as JSON. OSM labels most JSON as text/html,
// so that is what is sent unless contentType overrides it.
func (s *Server) JSON(target string, body any, contentType ...string) {
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("fakeosm: marshal stub for %s: %v", target, err))
	}
	ct := "text/html; charset=UTF-8"
	if len(contentType) > 0 {
		ct = contentType[0]
	}
	s.Stub(target, StubResponse{ContentType: ct, Body: data})
}

// Text queues a plain body, the way OSM reports some errors.
func (s *Server) Text(target string, body string) {
	s.Stub(target, StubResponse{ContentType: "text/html", Body: []byte(body)})
}

// Image queues raw image bytes
func (s *Server) Image(target string, body []byte) {
	s.Stub(target, StubResponse{ContentType: "image/jpeg", Body: body})
}

// Status queues an empty reply with the given HTTP status
func (s *Server) Status(target string, status int) {
	s.Stub(target, StubResponse{Status: status, ContentType: "text/html"})
}

// Clear drops the responses queued for target
func (s *Server) Clear(target string) {
	ep := parseEndpoint(target)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stubs, ep)
}

// Reset forgets recorded requests but keeps the stubs
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Requests returns the recorded calls to target, oldest first
func (s *Server) Requests(target string) []Request {
	ep := parseEndpoint(target)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if r.Path == ep.path && (ep.action == "" || r.Action == ep.action) {
			out = append(out, r)
		}
	}
	return out
}

// Count is len(Requests(target))
func (s *Server) Count(target string) int {
	return len(s.Requests(target))
}

// Last returns the most recent call to target and false if there was none
func (s *Server) Last(target string) (Request, bool) {
	reqs := s.Requests(target)
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

func (s *Server) record(r *http.Request) {
	_ = r.ParseForm()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Path:   r.URL.Path,
		Action: r.URL.Query().Get("action"),
		Query:  r.URL.Query(),
		Form:   r.PostForm,
	})
}

func (s *Server) handler(ep endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.record(r)

		s.mu.Lock()
		queue := s.stubs[ep]
		if len(queue) == 0 {
			s.mu.Unlock()
			http.Error(w, fmt.Sprintf("no stub for %s?action=%s", ep.path, ep.action), http.StatusNotFound)
			return
		}
		stub := queue[0]
		if len(queue) > 1 {
			s.stubs[ep] = queue[1:]
		}
		s.mu.Unlock()

		if stub.ContentType != "" {
			w.Header().Set("Content-Type", stub.ContentType)
		}
		status := stub.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write(stub.Body)
	}
}
