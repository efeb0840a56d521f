// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package structured

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/xeipuuv/gojsonschema"
)

// ErrNoJSONObject is returned by [Parse] when the text carries no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found")

// ValidationError reports the JSON Schema violations of a parsed object.
type ValidationError struct {
	Errors []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Errors, "; ")
}

// Schema is a compiled JSON Schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON Schema given as a Go value.
func CompileSchema(schema any) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompileSchema is like [CompileSchema] but panics on error.
func MustCompileSchema(schema any) *Schema {
	s, err := CompileSchema(schema)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate validates the JSON document doc against s.
func (s *Schema) Validate(doc string) error {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{
		Errors: make([]string, len(result.Errors())),
	}
	for i, e := range result.Errors() {
		verr.Errors[i] = e.String()
	}
	return verr
}

type parseOptions struct {
	schema        *Schema
	rejectUnknown bool
}

// ParseOption configures [Parse].
type ParseOption func(*parseOptions)

// WithSchema validates the extracted object against schema before decoding.
func WithSchema(schema *Schema) ParseOption {
	return func(o *parseOptions) {
		o.schema = schema
	}
}

// WithRejectUnknown makes decoding fail on object members unknown to the target type.
func WithRejectUnknown() ParseOption {
	return func(o *parseOptions) {
		o.rejectUnknown = true
	}
}

// Parse extracts a JSON object from text and decodes it into a T.
//
// On failure Parse returns the zero T and a non-nil error.
func Parse[T any](text string, opts ...ParseOption) (T, error) {
	var zero T

	o := new(parseOptions)
	for _, opt := range opts {
		opt(o)
	}

	doc, ok := extract(text)
	if !ok {
		return zero, ErrNoJSONObject
	}

	if o.schema != nil {
		if err := o.schema.Validate(doc); err != nil {
			return zero, err
		}
	}

	var v T
	if err := json.Unmarshal([]byte(doc), &v, json.RejectUnknownMembers(o.rejectUnknown)); err != nil {
		return zero, fmt.Errorf("decode %T: %w", v, err)
	}

	return v, nil
}

// ParseOr is like [Parse] but returns def instead of an error.
func ParseOr[T any](text string, def T, opts ...ParseOption) T {
	v, err := Parse[T](text, opts...)
	if err != nil {
		return def
	}
	return v
}
