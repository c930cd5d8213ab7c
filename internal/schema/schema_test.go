package schema

import (
	"testing"
)

func mustValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("descriptor must compile: %v", err)
	}
	return v
}

func TestColumnsInterleaveEvidence(t *testing.T) {
	cols := Columns()
	if len(cols) != 2*len(Fields) {
		t.Fatalf("expected %d columns, got %d", 2*len(Fields), len(cols))
	}
	if cols[0] != "Sample" || cols[1] != "Sample_evidence" {
		t.Fatalf("unexpected leading columns: %v", cols[:2])
	}
	for i := 0; i < len(cols); i += 2 {
		if cols[i+1] != cols[i]+EvidenceSuffix {
			t.Fatalf("column %q not followed by its evidence column, got %q", cols[i], cols[i+1])
		}
	}
}

func TestBuildRecordDefaultsEvidenceToEmptyString(t *testing.T) {
	v := mustValidator(t)
	rec, err := v.BuildRecord(map[string]any{
		"Sample":          "Silver",
		"Sample_evidence": "Page 2, Table 1: Silver (Ag)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range Fields {
		ev, ok := rec[f.Name+EvidenceSuffix].(string)
		if !ok {
			t.Fatalf("evidence for %q must be a string, got %T", f.Name, rec[f.Name+EvidenceSuffix])
		}
		if f.Name == "Sample" && ev == "" {
			t.Fatal("provided evidence must survive")
		}
	}
	if rec["Flyer"] != nil {
		t.Fatalf("absent value fields must be null, got %v", rec["Flyer"])
	}
}

func TestBuildRecordRejectsWrongType(t *testing.T) {
	v := mustValidator(t)
	if _, err := v.BuildRecord(map[string]any{
		"Spall (GPa)": "strong pullback signal",
	}); err == nil {
		t.Fatal("non-numeric text in a number field must fail validation")
	}
}

func TestBuildRecordCoercesNumericStrings(t *testing.T) {
	v := mustValidator(t)
	rec, err := v.BuildRecord(map[string]any{
		"impact velocity (m/s)":          "125",
		"impact velocity (m/s)_evidence": "Page 2, Table 1, row AGA1: 125 m/s",
	})
	if err != nil {
		t.Fatalf("numeric string must coerce: %v", err)
	}
	if rec["impact velocity (m/s)"] != float64(125) {
		t.Fatalf("expected 125, got %v", rec["impact velocity (m/s)"])
	}
}

func TestBuildRecordDropsUnknownKeys(t *testing.T) {
	v := mustValidator(t)
	rec, err := v.BuildRecord(map[string]any{
		"Sample":     "Copper",
		"confidence": 0.92,
	})
	if err != nil {
		t.Fatalf("unknown keys must be dropped, not fatal: %v", err)
	}
	if _, ok := rec["confidence"]; ok {
		t.Fatal("unknown key leaked into the record")
	}
}

func TestCSVRowOrderAndNulls(t *testing.T) {
	v := mustValidator(t)
	rec, err := v.BuildRecord(map[string]any{
		"Sample":          "Silver",
		"Sample_evidence": "Page 1",
		"Spall (GPa)":     0.57,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := rec.CSVRow()
	if len(row) != len(Columns()) {
		t.Fatalf("row width %d must match header width %d", len(row), len(Columns()))
	}
	if row[0] != "Silver" || row[1] != "Page 1" {
		t.Fatalf("unexpected leading cells: %v", row[:2])
	}
	for i, col := range Columns() {
		if col == "Spall (GPa)" && row[i] != "0.57" {
			t.Fatalf("expected 0.57 in %q, got %q", col, row[i])
		}
		if col == "Flyer" && row[i] != "" {
			t.Fatalf("null value must render empty, got %q", row[i])
		}
	}
}
