package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator turns raw decoded model objects into Records. Compile it once at
// startup; a descriptor that cannot compile is a programming error, not a
// runtime condition.
type Validator struct {
	compiled *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	b, err := json.Marshal(JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal record schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("experiment.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add record schema: %w", err)
	}
	compiled, err := compiler.Compile("experiment.json")
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &Validator{compiled: compiled}, nil
}

// BuildRecord constructs a validated Record from a raw decoded object. Keys
// outside the vocabulary are dropped, numeric strings are coerced for number
// fields, and every evidence field is defaulted to "" when absent so it is
// never null. A type violation on any remaining value fails the whole record.
func (v *Validator) BuildRecord(raw map[string]any) (Record, error) {
	rec := Record{}
	for _, f := range Fields {
		if val, ok := raw[f.Name]; ok {
			rec[f.Name] = coerceValue(f.Type, val)
		} else {
			rec[f.Name] = nil
		}
		evKey := f.Name + EvidenceSuffix
		ev, ok := raw[evKey].(string)
		if !ok {
			ev = ""
		}
		rec[evKey] = ev
	}
	if err := v.compiled.Validate(map[string]any(rec)); err != nil {
		return nil, fmt.Errorf("record violates schema: %w", err)
	}
	return rec, nil
}

// coerceValue applies the boundary coercions the model output needs: numeric
// strings become numbers, empty strings become null. Anything else passes
// through for the validator to judge.
func coerceValue(t FieldType, val any) any {
	if t != FieldNumber {
		return val
	}
	s, ok := val.(string)
	if !ok {
		return val
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return val
}
