// Package casedata joins the T5G dashboard sources into one enriched record
// per card.
//
// Payloads are decoded into ordered JSON values: objects become *Object
// (insertion-ordered), arrays become []any, numbers stay json.Number so a
// case number keeps the exact text the dashboard sent.
package casedata

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a JSON object that remembers key order.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// ErrInvalidJSON is returned by Decode for syntactically invalid payloads.
var ErrInvalidJSON = errors.New("invalid JSON")

// Decode parses a JSON document into ordered values.
func Decode(data []byte) (any, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	v, err := decodeValue(value, dataType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return v, nil
}

func decodeValue(raw []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		obj := NewObject()
		// ObjectEach hands over keys already unescaped.
		err := jsonparser.ObjectEach(raw, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
			v, err := decodeValue(value, vt)
			if err != nil {
				return err
			}
			obj.Set(string(key), v)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return obj, nil

	case jsonparser.Array:
		list := []any{}
		var inner error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, vt jsonparser.ValueType, _ int, err error) {
			if inner != nil {
				return
			}
			if err != nil {
				inner = err
				return
			}
			v, err := decodeValue(value, vt)
			if err != nil {
				inner = err
				return
			}
			list = append(list, v)
		})
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return nil, inner
		}
		return list, nil

	case jsonparser.String:
		return jsonparser.ParseString(raw)

	case jsonparser.Number:
		return json.Number(string(raw)), nil

	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(raw)

	case jsonparser.Null:
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected JSON value type %s", dataType)
}

// asObject reports whether v is a JSON object.
func asObject(v any) (*Object, bool) {
	obj, ok := v.(*Object)
	return obj, ok && obj != nil
}

// stringForm renders a case number the way every source is compared:
// strings as-is, numbers by their literal text, compound values as JSON.
func stringForm(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case float64, int, int64:
		return fmt.Sprint(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// rawKey returns the type-preserving map key for a case number. Compound
// values are not comparable and fall back to their string form.
func rawKey(v any) any {
	switch t := v.(type) {
	case string, json.Number, bool:
		return t
	case float64:
		return json.Number(stringForm(t))
	case int:
		return json.Number(stringForm(t))
	case int64:
		return json.Number(stringForm(t))
	}
	return stringForm(v)
}

// isNumeric reports whether v was a JSON number.
func isNumeric(v any) bool {
	switch v.(type) {
	case json.Number, float64, int, int64:
		return true
	}
	return false
}

// canonicalDigits strips leading zeros from an all-digit case number.
// Returns "" for anything that is not purely digits.
func canonicalDigits(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
