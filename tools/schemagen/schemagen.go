// Package main generates the JSON schema of the persisted match_info artifact.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/replaystats/pkg/export"
)

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 any                `json:"type,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

var outputDir string

func main() {
	flag.StringVar(&outputDir, "o", "pkg/export/schema", "Output directory for schemas")
	flag.Parse()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	schema := generateSchema(&export.Artifact{})
	if err := writeSchema(export.SchemaName, schema); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated schema %s\n", export.SchemaName)
}

func generateSchema(v any) *Schema {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	defs := make(map[string]*Schema)
	props, required := structToProperties(t, defs)

	schema := &Schema{
		Schema:               "http://json-schema.org/draft-07/schema#",
		Title:                "match_info artifact",
		Description:          "Per-unit replay statistics persisted between parse and export",
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: boolPtr(false),
	}

	if len(defs) > 0 {
		schema.Definitions = defs
	}

	return schema
}

func structToProperties(t reflect.Type, defs map[string]*Schema) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")

		if jsonTag == "-" || jsonTag == "" {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		jsonName := parts[0]
		isOmitempty := len(parts) > 1 && parts[1] == "omitempty"

		fieldSchema := typeToSchema(field.Type, defs)
		applyConstraints(fieldSchema, field.Tag.Get("schema"))
		props[jsonName] = fieldSchema

		if !isOmitempty {
			required = append(required, jsonName)
		}
	}

	return props, required
}

// applyConstraints reads `schema:"enum=A|B,minimum=0,minLength=1"` tags.
func applyConstraints(s *Schema, tag string) {
	if tag == "" {
		return
	}

	for rule := range strings.SplitSeq(tag, ",") {
		key, value, ok := strings.Cut(rule, "=")
		if !ok {
			continue
		}

		switch key {
		case "enum":
			s.Enum = strings.Split(value, "|")
		case "minimum":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				s.Minimum = &f
			}
		case "minLength":
			if n, err := strconv.Atoi(value); err == nil {
				s.MinLength = &n
			}
		}
	}
}

func typeToSchema(t reflect.Type, defs map[string]*Schema) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t == reflect.TypeOf(time.Duration(0)) {
			return &Schema{Type: "integer", Description: "Duration in nanoseconds"}
		}

		return &Schema{Type: "integer"}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice:
		return &Schema{
			Type:  "array",
			Items: typeToSchema(t.Elem(), defs),
		}

	case reflect.Map:
		return &Schema{
			Type: "object",
			Description: fmt.Sprintf("Map with %s keys and %s values",
				t.Key().Kind().String(), t.Elem().Kind().String()),
		}

	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return &Schema{Type: "string", Description: "ISO 8601 timestamp"}
		}

		defName := t.Name()
		if defName == "" {
			props, required := structToProperties(t, defs)

			return &Schema{Type: "object", Properties: props, Required: required}
		}

		if _, exists := defs[defName]; !exists {
			props, required := structToProperties(t, defs)
			defs[defName] = &Schema{
				Type:                 "object",
				Properties:           props,
				Required:             required,
				AdditionalProperties: boolPtr(false),
			}
		}

		return &Schema{Ref: "#/definitions/" + defName}

	case reflect.Ptr:
		// A nil pointer encodes as null.
		inner := typeToSchema(t.Elem(), defs)
		if name, ok := inner.Type.(string); ok {
			inner.Type = []string{name, "null"}
		}

		return inner

	default:
		return &Schema{Type: "object"}
	}
}

func writeSchema(name string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	path := filepath.Join(outputDir, name)

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func boolPtr(b bool) *bool {
	return &b
}
