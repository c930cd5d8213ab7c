package schema

// FieldType is the declared value type of a substantive field. Values are
// nullable; the companion evidence string is not.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
)

// EvidenceSuffix names the companion field that records where a value came
// from ("Page 2, Table 1: ..." or "Not found in paper").
const EvidenceSuffix = "_evidence"

type Field struct {
	Name string
	Type FieldType
}

// Fields is the experiment record vocabulary in canonical column order. The
// names carry their units verbatim because they double as output column
// headers. This list is the single source of truth: it renders the prompt
// schema, compiles the validator and orders the export columns.
var Fields = []Field{
	{Name: "Sample", Type: FieldString},
	{Name: "Synthesis", Type: FieldString},
	{Name: "Treatment", Type: FieldString},
	{Name: "Initial sample temperature (K)", Type: FieldNumber},
	{Name: "Yield stress (Mpa)", Type: FieldNumber},
	{Name: "Ultimate stress (Mpa)", Type: FieldNumber},
	{Name: "KIC (Mpa·m^0.5)", Type: FieldNumber},
	{Name: "Hardness", Type: FieldNumber},
	{Name: "B (Gpa)", Type: FieldNumber},
	{Name: "G (Gpa)", Type: FieldNumber},
	{Name: "E (Gpa)", Type: FieldNumber},
	{Name: "Mu", Type: FieldNumber},
	{Name: "Melting point (K)", Type: FieldNumber},
	{Name: "Sample thickness (mm)", Type: FieldNumber},
	{Name: "Sample diameter (mm)", Type: FieldNumber},
	{Name: "Grain size (µm)", Type: FieldNumber},
	{Name: "Initial density (g/cm³)", Type: FieldNumber},
	{Name: "Longitudinal sound speed (m/s)", Type: FieldNumber},
	{Name: "Shear sound speed (m/s)", Type: FieldNumber},
	{Name: "Bulk sound speed (m/s)", Type: FieldNumber},
	{Name: "Flyer", Type: FieldString},
	{Name: "Flyer (processed)", Type: FieldString},
	{Name: "Flyer thickness (mm)", Type: FieldNumber},
	{Name: "Flyer diameter (mm)", Type: FieldNumber},
	{Name: "impact velocity (m/s)", Type: FieldNumber},
	{Name: "Peak Stress (GPa)", Type: FieldNumber},
	{Name: "Strain rate (10⁵ s⁻¹)", Type: FieldNumber},
	{Name: "Pulse duration (µs)", Type: FieldNumber},
	{Name: "Type of experiment", Type: FieldString},
	{Name: "Gas gun diameter (mm)", Type: FieldNumber},
	{Name: "Spall (GPa)", Type: FieldNumber},
	{Name: "Spall direction", Type: FieldString},
	{Name: "References", Type: FieldString},
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// Columns returns the flat tabular header: each field immediately followed by
// its evidence column.
func Columns() []string {
	cols := make([]string, 0, 2*len(Fields))
	for _, f := range Fields {
		cols = append(cols, f.Name, f.Name+EvidenceSuffix)
	}
	return cols
}

// JSONSchema renders the record contract as a JSON Schema document. The same
// document is embedded in the extraction prompt and compiled into the
// validator, so the model is instructed with exactly what is enforced.
func JSONSchema() map[string]any {
	props := make(map[string]any, 2*len(Fields))
	for _, f := range Fields {
		props[f.Name] = map[string]any{
			"type": []string{string(f.Type), "null"},
		}
		props[f.Name+EvidenceSuffix] = map[string]any{
			"type":    "string",
			"default": "",
		}
	}
	return map[string]any{
		"type":                 "object",
		"title":                "SpallExperiment",
		"properties":           props,
		"additionalProperties": false,
	}
}
