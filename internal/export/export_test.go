package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"spallflow/internal/schema"
)

func sampleRecords(t *testing.T) []schema.Record {
	t.Helper()
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	r1, err := v.BuildRecord(map[string]any{
		"Sample":          "Silver",
		"Sample_evidence": "Page 1, Table 1: Silver (Ag)",
		"Spall (GPa)":     0.57,
	})
	if err != nil {
		t.Fatalf("record 1: %v", err)
	}
	r2, err := v.BuildRecord(map[string]any{
		"Sample": "Copper",
	})
	if err != nil {
		t.Fatalf("record 2: %v", err)
	}
	return []schema.Record{r1, r2}
}

func TestCSVLayout(t *testing.T) {
	b, err := CSV(sampleRecords(t))
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	cols := schema.Columns()
	if len(rows[0]) != len(cols) || rows[0][0] != "Sample" {
		t.Fatalf("unexpected header: %v", rows[0][:2])
	}
	if rows[1][0] != "Silver" || rows[2][0] != "Copper" {
		t.Fatal("record order must survive export")
	}
	for i, col := range cols {
		if col == "Spall (GPa)" && rows[1][i] != "0.57" {
			t.Fatalf("expected 0.57 under %q, got %q", col, rows[1][i])
		}
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	b, err := XLSX(sampleRecords(t))
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Experiments")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) < 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Sample" || rows[1][0] != "Silver" {
		t.Fatalf("unexpected cells: %v %v", rows[0][0], rows[1][0])
	}
}

func TestJSONLOneObjectPerLine(t *testing.T) {
	b, err := JSONL(sampleRecords(t))
	if err != nil {
		t.Fatalf("jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"Sample":"Silver"`) {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
}
