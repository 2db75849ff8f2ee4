package validation

import (
	"bytes"
	"encoding/json"
)

// object is one decoded JSON body. Keys match exactly; unknown keys are ignored.
type object struct {
	raw   map[string]json.RawMessage
	errs  Errors
	nulls []string
}

func decodeObject(data []byte) (*object, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, Errors{"payload": "must be a JSON object"}
	}
	return &object{raw: raw, errs: Errors{}}, nil
}

// str returns the string under key. An absent key and an explicit null both
// return nil; the null is remembered so the schema can reject it.
func (o *object) str(key string) *string {
	raw, ok := o.raw[key]
	if !ok {
		return nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		o.nulls = append(o.nulls, key)
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		o.errs.add(key, "must be a string")
		return nil
	}
	return &s
}

func rejectNulls(errs Errors, nulls []string) {
	for _, f := range nulls {
		errs.add(f, "must not be null")
	}
}
