package indexer

import (
	"encoding/json"
	"strconv"
)

// PageImage is one pre-rendered document page. The raster bytes are opaque to
// this package; they are only ever forwarded to the VLM.
type PageImage struct {
	Number int
	MIME   string
	Data   []byte
}

// Element is one constituent the identification pass found on a page.
type Element struct {
	Type         string
	Description  string
	ContainsData bool
}

func elementFromValue(v any) (Element, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Element{}, false
	}
	return Element{
		Type:         asString(m["type"]),
		Description:  asString(m["description"]),
		ContainsData: asBool(m["contains_data"]),
	}, true
}

type TableRecord struct {
	Kind        string           `json:"type"`
	Description string           `json:"description"`
	Headers     []string         `json:"headers"`
	Rows        []map[string]any `json:"rows"`
}

// TableFromValue builds a TableRecord from parsed model JSON. A row either
// carries exactly the declared header keys (null for empty cells) or it is
// dropped whole; partial rows are never kept.
func TableFromValue(v any) (TableRecord, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return TableRecord{}, false
	}
	t := TableRecord{Kind: "data_table", Description: asString(m["description"])}
	if hs, ok := m["headers"].([]any); ok {
		for _, h := range hs {
			t.Headers = append(t.Headers, asString(h))
		}
	}
	rows, _ := m["rows"].([]any)
	for _, rv := range rows {
		row, ok := rv.(map[string]any)
		if !ok || !rowMatchesHeaders(row, t.Headers) {
			continue
		}
		clean := make(map[string]any, len(row))
		for k, cv := range row {
			clean[k] = asCell(cv)
		}
		t.Rows = append(t.Rows, clean)
	}
	return t, true
}

func rowMatchesHeaders(row map[string]any, headers []string) bool {
	if len(row) != len(headers) {
		return false
	}
	for _, h := range headers {
		if _, ok := row[h]; !ok {
			return false
		}
	}
	return true
}

type Axis struct {
	Label string    `json:"label"`
	Unit  string    `json:"unit"`
	Range []float64 `json:"range,omitempty"`
}

type DataSeries struct {
	Name   string      `json:"name"`
	Points [][]float64 `json:"data_points"`
}

type FigureRecord struct {
	Kind        string       `json:"type"`
	Caption     string       `json:"caption"`
	ChartType   string       `json:"chart_type"`
	XAxis       Axis         `json:"x_axis"`
	YAxis       Axis         `json:"y_axis"`
	DataSeries  []DataSeries `json:"data_series"`
	Legend      []string     `json:"legend"`
	Annotations []string     `json:"annotations"`
}

// FigureFromValue coerces parsed model JSON into a FigureRecord. Only the
// JSON shape is enforced: series with few or no usable points are kept as-is
// rather than invented or discarded.
func FigureFromValue(v any) (FigureRecord, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return FigureRecord{}, false
	}
	f := FigureRecord{
		Kind:        "figure",
		Caption:     asString(m["caption"]),
		ChartType:   asString(m["type"]),
		XAxis:       axisFromValue(m["x_axis"]),
		YAxis:       axisFromValue(m["y_axis"]),
		Legend:      asStringSlice(m["legend"]),
		Annotations: asStringSlice(m["annotations"]),
	}
	series, _ := m["data_series"].([]any)
	for _, sv := range series {
		sm, ok := sv.(map[string]any)
		if !ok {
			continue
		}
		ds := DataSeries{Name: asString(sm["name"])}
		points, _ := sm["data_points"].([]any)
		for _, pv := range points {
			pair, ok := pv.([]any)
			if !ok || len(pair) < 2 {
				continue
			}
			x, xok := asNumber(pair[0])
			y, yok := asNumber(pair[1])
			if xok && yok {
				ds.Points = append(ds.Points, []float64{x, y})
			}
		}
		f.DataSeries = append(f.DataSeries, ds)
	}
	return f, true
}

func axisFromValue(v any) Axis {
	m, ok := v.(map[string]any)
	if !ok {
		return Axis{}
	}
	a := Axis{Label: asString(m["label"]), Unit: asString(m["unit"])}
	if rng, ok := m["range"].([]any); ok {
		for _, rv := range rng {
			if n, ok := asNumber(rv); ok {
				a.Range = append(a.Range, n)
			}
		}
	}
	return a
}

type TextRecord struct {
	Kind        string `json:"type"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// PageStructure holds everything extracted from one page. Error is set only
// when the page as a whole failed; element-level failures just reduce the
// record lists.
type PageStructure struct {
	PageNumber   int            `json:"page_number"`
	Tables       []TableRecord  `json:"tables"`
	Figures      []FigureRecord `json:"figures"`
	TextSections []TextRecord   `json:"text_sections"`
	ElementCount int            `json:"element_count"`
	Error        string         `json:"error,omitempty"`
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		n, err := strconv.ParseFloat(t, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// asCell keeps cells inside the closed value set string|number|null.
func asCell(v any) any {
	switch t := v.(type) {
	case string, float64, nil:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
