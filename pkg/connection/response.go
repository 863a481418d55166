package connection

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"
	"github.com/osmx/osm-go/pkg/constants"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
)

// Response is an undecoded 200 response from OSM.
type Response struct {
	ContentType string
	Body        []byte
}

// IsImage reports whether the body holds image bytes
func (r *Response) IsImage() bool {
	return strings.HasPrefix(r.ContentType, "image/")
}

func (r *Response) isDocument() bool {
	return r.ContentType == ContentTypeJSON || r.ContentType == ContentTypeHTML
}

// Value decodes the body into a generic value: map[string]any, []any or a scalar for JSON,
// []byte for images.
func (r *Response) Value() (any, error) {
	if r.IsImage() {
		return r.Body, nil
	}
	var v any
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Decode unmarshals the JSON body into dst after checking it for an OSM error.
// OSM sends JSON with either content type; a body that is not JSON is OSM's error text.
func (r *Response) Decode(dst any) error {
	if !r.isDocument() {
		return fmt.Errorf("%w: %q", constants.ErrUnhandledContentType, r.ContentType)
	}
	if err := DetectError(r.Body); err != nil {
		return err
	}
	if err := json.Unmarshal(r.Body, dst); err != nil {
		return &OSMError{Message: strings.TrimSpace(string(r.Body))}
	}
	return nil
}

// DetectError finds the error OSM embeds in a JSON object, which can be
// {"error": "text"}, {"err": "text"} or {"error": {"message": "text"}}.
func DetectError(body []byte) error {
	for _, key := range []string{"error", "err"} {
		value, dataType, _, err := jsonparser.Get(body, key)
		if err != nil {
			continue
		}

		switch dataType {
		case jsonparser.String:
			msg, err := jsonparser.ParseString(value)
			if err != nil || msg == "" {
				continue
			}
			return &OSMError{Message: msg}
		case jsonparser.Object:
			msg, err := jsonparser.GetString(value, "message")
			if err != nil || msg == "" {
				if strings.TrimSpace(string(value)) == "{}" {
					continue
				}
				msg = string(value)
			}
			return &OSMError{Message: msg}
		}
	}
	return nil
}
