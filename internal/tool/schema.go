//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package tool generates JSON schemas for function tool arguments.
package tool

import (
	"reflect"
	"strings"

	"trpc.group/trpc-go/trpc-image-agent-go/tool"
)

// GenerateJSONSchema generates a basic JSON schema from a reflect.Type.
//
// Struct fields follow their json tag. A field is required unless it is a pointer
// or tagged omitempty, or the jsonschema tag says "required". The jsonschema tag
// also carries "description=..." and repeated "enum=..." entries.
func GenerateJSONSchema(t reflect.Type) *tool.Schema {
	if t == nil {
		return &tool.Schema{Type: "object"}
	}
	switch t.Kind() {
	case reflect.Struct:
		return structSchema(t, true)
	case reflect.Ptr:
		elemSchema := GenerateJSONSchema(t.Elem())
		elemSchema.Type = elemSchema.Type + ",null"
		return elemSchema
	default:
		return GenerateFieldSchema(t)
	}
}

// GenerateFieldSchema generates schema for a specific field type.
func GenerateFieldSchema(t reflect.Type) *tool.Schema {
	switch t.Kind() {
	case reflect.String:
		return &tool.Schema{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &tool.Schema{Type: "integer"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &tool.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &tool.Schema{Type: "number"}
	case reflect.Bool:
		return &tool.Schema{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &tool.Schema{
			Type:  "array",
			Items: GenerateFieldSchema(t.Elem()),
		}
	case reflect.Map:
		return &tool.Schema{
			Type:                 "object",
			AdditionalProperties: GenerateFieldSchema(t.Elem()),
		}
	case reflect.Ptr:
		// Pointers are nullable.
		elemSchema := GenerateFieldSchema(t.Elem())
		elemSchema.Type = elemSchema.Type + ",null"
		return elemSchema
	case reflect.Struct:
		return structSchema(t, false)
	default:
		return &tool.Schema{Type: "object"}
	}
}

func structSchema(t reflect.Type, withRequired bool) *tool.Schema {
	schema := &tool.Schema{Type: "object", Properties: map[string]*tool.Schema{}}
	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		fieldName := field.Name
		isOmitEmpty := false
		if jsonTag != "" {
			name, opts, _ := strings.Cut(jsonTag, ",")
			if name != "" {
				fieldName = name
			}
			isOmitEmpty = strings.Contains(opts, "omitempty")
		}

		fieldSchema := GenerateFieldSchema(field.Type)
		tag := parseSchemaTag(field.Tag.Get("jsonschema"))
		fieldSchema.Description = tag.description
		fieldSchema.Enum = tag.enum
		schema.Properties[fieldName] = fieldSchema

		if tag.required || (field.Type.Kind() != reflect.Ptr && !isOmitEmpty) {
			required = append(required, fieldName)
		}
	}
	if withRequired && len(required) > 0 {
		schema.Required = required
	}
	return schema
}

type schemaTag struct {
	description string
	enum        []any
	required    bool
}

func parseSchemaTag(tag string) schemaTag {
	var st schemaTag
	if tag == "" {
		return st
	}
	for _, item := range strings.Split(tag, ",") {
		key, value, _ := strings.Cut(item, "=")
		switch strings.TrimSpace(key) {
		case "description":
			st.description = value
		case "enum":
			st.enum = append(st.enum, value)
		case "required":
			st.required = true
		}
	}
	return st
}
