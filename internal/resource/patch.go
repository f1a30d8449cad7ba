package resource

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// patchValidator reads the same `binding` tags gin checks on create, so a
// patch cannot store a value a create would have rejected.
var patchValidator = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

// DecodePatch turns a JSON object into a typed column → value map for
// Hook.Update. Each key must be a mutable column of s; its value is decoded
// into the Go type of the matching field of T, so timestamps and amounts
// reach the store typed rather than as raw JSON scalars. Decoded values must
// satisfy the field's `binding` rules.
func DecodePatch[T any](s Schema, body []byte) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyPatch
	}

	fields := patchFields(reflect.TypeOf((*T)(nil)).Elem())
	out := make(map[string]any, len(raw))
	for k, msg := range raw {
		if !s.IsMutable(k) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
		f, ok := fields[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, k)
		}
		v := reflect.New(f.typ)
		if err := json.Unmarshal(msg, v.Interface()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidField, k, err)
		}
		val := v.Elem().Interface()
		if f.rules != "" {
			if err := patchValidator.Var(val, f.rules); err != nil {
				return nil, fmt.Errorf("%w: %s: failed %q", ErrInvalidField, k, f.rules)
			}
		}
		out[k] = val
	}
	return out, nil
}

type patchField struct {
	typ   reflect.Type
	rules string
}

// patchFields maps JSON names to field types and binding rules, descending
// into embedded structs.
func patchFields(t reflect.Type) map[string]patchField {
	m := make(map[string]patchField)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			for k, v := range patchFields(f.Type) {
				m[k] = v
			}
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		rules := f.Tag.Get("binding")
		if rules == "-" {
			rules = ""
		}
		m[name] = patchField{typ: f.Type, rules: rules}
	}
	return m
}
