package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/osmx/osm-go/pkg/constants"
)

var validate = validator.New()

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
	err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", constants.ErrInvalidObject, e.err)
}

func (e *ValidationError) Is(target error) bool {
	return target == constants.ErrInvalidObject
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// Validate runs the struct's validate tags and returns a *ValidationError.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields, err: err}
}

// invalid builds a ValidationError for checks that tags cannot express
func invalid(field, reason string) error {
	return &ValidationError{Fields: []string{field}, err: fmt.Errorf("%s %s", field, reason)}
}

// tracked remembers the OSM field values a record had when it was loaded,
// so an update only sends what changed.
type tracked struct {
	snapshot map[string]string
}

func (t *tracked) markClean(fields map[string]string) {
	t.snapshot = make(map[string]string, len(fields))
	for k, v := range fields {
		t.snapshot[k] = v
	}
}

// changed lists, in order, the keys whose value differs from the snapshot.
// A record that was never loaded reports every key.
func (t *tracked) changed(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if t.snapshot == nil {
			keys = append(keys, k)
			continue
		}
		if old, ok := t.snapshot[k]; !ok || old != v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
