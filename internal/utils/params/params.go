// Package params reads and rewrites task params JSON objects without changing the
// values it doesn't touch.
package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Decode decodes a JSON object, numbers are kept as json.Number.
func Decode(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	obj := map[string]any{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return obj, nil
}

// Encode encodes a value as compact JSON without HTML escaping.
func Encode(v any) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// Set replaces the values of the given keys in a JSON object. Other members keep
// their order and their original bytes, missing keys are appended in the given order.
func Set(s string, keys []string, values map[string]any) (string, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return "", fmt.Errorf("params are not a JSON object")
	}

	var b strings.Builder
	b.WriteByte('{')
	written := map[string]bool{}
	write := func(key string, raw string) error {
		k, err := Encode(key)
		if err != nil {
			return err
		}
		if len(written) > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(raw)
		written[key] = true
		return nil
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		key, ok := tok.(string)
		if !ok {
			return "", fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return "", err
		}
		if written[key] {
			return "", fmt.Errorf("duplicated key %q", key)
		}

		value := string(raw)
		if v, ok := values[key]; ok {
			value, err = Encode(v)
			if err != nil {
				return "", err
			}
		}
		if err := write(key, value); err != nil {
			return "", err
		}
	}
	if _, err := dec.Token(); err != nil {
		return "", err
	}
	if _, err := dec.Token(); err != io.EOF {
		return "", fmt.Errorf("unexpected data after JSON object")
	}

	for _, key := range keys {
		if written[key] {
			continue
		}
		v, ok := values[key]
		if !ok {
			continue
		}
		value, err := Encode(v)
		if err != nil {
			return "", err
		}
		if err := write(key, value); err != nil {
			return "", err
		}
	}
	b.WriteByte('}')

	return b.String(), nil
}

// String renders a decoded param value the way it's written in the params, strings
// without quotes.
func String(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case nil:
		return ""
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		s, err := Encode(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return s
	}
}

// ID returns the ID of a decoded number or numeric string, 0 when missing.
func ID(v any) (int64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		return v.Int64()
	case float64:
		return int64(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		return json.Number(v).Int64()
	default:
		return 0, fmt.Errorf("unexpected id %v", v)
	}
}
