package provider

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"google.golang.org/genai"
)

// Values copied as-is: JSON schemas and user labels carry caller-chosen keys.
var verbatimKeys = map[string]bool{
	"responseJsonSchema":   true,
	"parametersJsonSchema": true,
	"labels":               true,
	"default":              true,
	"example":              true,
}

// Maps whose keys are caller-chosen names but whose values are SDK objects.
var namedMapKeys = map[string]bool{
	"properties": true,
}

// decodeGenerationConfig maps the opaque client config onto the SDK type.
// Keys use the SDK's JSON names; snake_case keys are accepted at any depth.
func decodeGenerationConfig(raw map[string]any) (*genai.GenerateContentConfig, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	normalized, err := normalizeKeys(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}

	var cfg genai.GenerateContentConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.DecodeHookFuncType(rejectFractionalInts),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(normalized); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	return &cfg, nil
}

// normalizeKeys rewrites snake_case object keys to camelCase through nested
// objects and arrays.
func normalizeKeys(obj map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(obj))
	for key, value := range obj {
		camel := snakeToCamel(key)
		if _, dup := out[camel]; dup {
			return nil, fmt.Errorf("duplicate key %q", camel)
		}

		switch {
		case verbatimKeys[camel]:
			out[camel] = value
		case namedMapKeys[camel]:
			named, ok := value.(map[string]any)
			if !ok {
				out[camel] = value
				continue
			}
			converted := make(map[string]any, len(named))
			for name, v := range named {
				nv, err := normalizeValue(v)
				if err != nil {
					return nil, err
				}
				converted[name] = nv
			}
			out[camel] = converted
		default:
			nv, err := normalizeValue(value)
			if err != nil {
				return nil, err
			}
			out[camel] = nv
		}
	}
	return out, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return normalizeKeys(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			nv, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = nv
		}
		return items, nil
	default:
		return value, nil
	}
}

// rejectFractionalInts stops weak typing from truncating 100.5 into an integer field.
func rejectFractionalInts(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("cannot use %v as an integer", data)
	}
	return data, nil
}

func snakeToCamel(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	parts := strings.Split(key, "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
