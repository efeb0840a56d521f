// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"fmt"
	"reflect"
	"strings"

	"google.golang.org/genai"
)

// schemaFor converts the Go type t to a [*genai.Schema] describing its JSON form.
//
// It supports:
//   - Basic types: string, int, float, bool
//   - Complex types: slices, maps with string keys, structs
//   - Pointer types (treated as optional struct fields)
//   - Struct field tags for JSON property names
func schemaFor(t reflect.Type) (*genai.Schema, error) {
	if t.Kind() == reflect.Pointer {
		return schemaFor(t.Elem())
	}

	switch t.Kind() {
	case reflect.String:
		return &genai.Schema{Type: genai.TypeString}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &genai.Schema{Type: genai.TypeInteger}, nil

	case reflect.Float32, reflect.Float64:
		return &genai.Schema{Type: genai.TypeNumber}, nil

	case reflect.Bool:
		return &genai.Schema{Type: genai.TypeBoolean}, nil

	case reflect.Slice, reflect.Array:
		items, err := schemaFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return &genai.Schema{
			Type:  genai.TypeArray,
			Items: items,
		}, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map keys must be strings, got %v", t.Key().Kind())
		}
		return &genai.Schema{Type: genai.TypeObject}, nil

	case reflect.Struct:
		return structSchema(t)

	case reflect.Interface:
		// any carries no type constraint
		return &genai.Schema{}, nil

	default:
		return nil, fmt.Errorf("unsupported type: %v", t.Kind())
	}
}

// structSchema converts a struct type to an object schema.
func structSchema(t reflect.Type) (*genai.Schema, error) {
	properties := make(map[string]*genai.Schema)
	var required []string

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		if name == "-" {
			continue
		}

		schema, err := schemaFor(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if desc := field.Tag.Get("description"); desc != "" {
			schema.Description = desc
		}
		properties[name] = schema

		if isRequiredField(field) {
			required = append(required, name)
		}
	}

	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
	}
	if len(required) > 0 {
		schema.Required = required
	}

	return schema, nil
}

// jsonFieldName extracts the JSON field name from struct field tags.
func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return field.Name
}

// isRequiredField reports whether a struct field is required: pointers and
// omitempty/omitzero fields are optional.
func isRequiredField(field reflect.StructField) bool {
	if field.Type.Kind() == reflect.Pointer {
		return false
	}

	_, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			return false
		}
	}

	return true
}
