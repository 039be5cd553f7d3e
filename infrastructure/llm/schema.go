package llm

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// schemaFor builds a genai.Schema from a parameter struct, reading the `json`
// and `description` tags. Fields tagged omitempty are optional. A nil value
// yields an empty object schema.
func schemaFor(params any) (*genai.Schema, error) {
	if params == nil {
		return &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}, nil
	}

	t := reflect.TypeOf(params)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool params must be a struct, got %s", t.Kind())
	}

	return structSchema(t)
}

func structSchema(t reflect.Type) (*genai.Schema, error) {
	properties := make(map[string]*genai.Schema)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" || !field.IsExported() {
			continue
		}

		parts := strings.Split(jsonTag, ",")
		name := parts[0]

		optional := false
		for _, p := range parts[1:] {
			if p == "omitempty" {
				optional = true
			}
		}
		if !optional {
			required = append(required, name)
		}

		prop, err := typeSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		prop.Description = field.Tag.Get("description")
		properties[name] = prop
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}, nil
}

func typeSchema(t reflect.Type) (*genai.Schema, error) {
	switch t.Kind() {
	case reflect.Pointer:
		s, err := typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		s.Nullable = true
		return s, nil
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
		items, err := typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &genai.Schema{Type: genai.TypeArray, Items: items}, nil
	case reflect.Struct:
		return structSchema(t)
	default:
		return nil, fmt.Errorf("unsupported type %s", t.Kind())
	}
}
