package modeljson

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseFencedArray(t *testing.T) {
	v, err := Parse("```json\n[{\"a\":1}]\n```")
	if err != nil {
		t.Fatalf("parse fenced array: %v", err)
	}
	want := []any{map[string]any{"a": float64(1)}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v want %#v", v, want)
	}
}

func TestParseSurroundingProse(t *testing.T) {
	v, err := Parse("Here is the extracted data:\n[{\"Sample\": \"Cu\"}]\nLet me know if you need more.")
	if err != nil {
		t.Fatalf("parse with prose: %v", err)
	}
	list, ok := v.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected 1-element list, got %#v", v)
	}
}

func TestParseObjectShape(t *testing.T) {
	v, err := Parse("```\n{\"headers\": [\"A\"], \"rows\": []}\n```")
	if err != nil {
		t.Fatalf("parse fenced object: %v", err)
	}
	if _, ok := v.(map[string]any); !ok {
		t.Fatalf("expected object, got %#v", v)
	}
}

func TestParseListCoercesSingleObject(t *testing.T) {
	list, err := ParseList(`{"Sample": "Ag"}`)
	if err != nil {
		t.Fatalf("parse single object: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected coerced 1-element list, got %d", len(list))
	}
}

// Parsing the canonical re-serialization of a parsed value must yield an
// equal value.
func TestParseIdempotent(t *testing.T) {
	v1, err := Parse(`[{"Sample": "Ag", "impact velocity (m/s)": 125, "Flyer": null}]`)
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	b, err := json.Marshal(v1)
	if err != nil {
		t.Fatalf("reserialize: %v", err)
	}
	v2, err := Parse(string(b))
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Fatalf("round trip changed value: %#v vs %#v", v1, v2)
	}
}

func TestParseTruncatedArraySalvages(t *testing.T) {
	_, err := Parse(`[{"Sample":"Ag"}, {"Sample":"Cu"`)
	if err == nil {
		t.Fatal("expected full parse to fail on truncated array")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if len(perr.Salvaged) < 1 {
		t.Fatal("expected at least one salvaged object")
	}
	if perr.Salvaged[0]["Sample"] != "Ag" {
		t.Fatalf("unexpected first salvaged object: %#v", perr.Salvaged[0])
	}
}

func TestParseErrorCarriesContext(t *testing.T) {
	_, err := Parse(`[{"a": 1}, {"a": }]`)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Offset == 0 || perr.Context == "" {
		t.Fatalf("expected offset and context, got %+v", perr)
	}
}

func TestSalvageShallowNesting(t *testing.T) {
	objs, dropped := Salvage(`garbage {"x": {"y": 1}, "z": 2} more {"broken": } {"k": "v"}`)
	if len(objs) != 2 {
		t.Fatalf("expected 2 salvaged objects, got %d", len(objs))
	}
	if dropped != 1 {
		t.Fatalf("expected 1 dropped object, got %d", dropped)
	}
	if objs[0]["z"] != float64(2) {
		t.Fatalf("nested object salvaged incorrectly: %#v", objs[0])
	}
}

func TestSalvageNeverFails(t *testing.T) {
	objs, dropped := Salvage("no json here at all")
	if len(objs) != 0 || dropped != 0 {
		t.Fatalf("expected empty salvage, got %d objs %d dropped", len(objs), dropped)
	}
}
