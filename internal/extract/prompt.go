package extract

import (
	"encoding/json"
	"fmt"

	"spallflow/internal/fragments"
	"spallflow/internal/schema"
)

// systemPrompt renders the extraction contract for the LLM. The embedded
// schema document is the same one the validator compiles, so the model is
// told exactly what will be enforced.
func systemPrompt() string {
	doc, err := json.MarshalIndent(schema.JSONSchema(), "", "  ")
	if err != nil {
		doc = []byte("{}")
	}
	return fmt.Sprintf(`You are a JSON-only API for extracting spall experiment data from scientific papers.

**Input Types You'll Receive:**
1. **Text sections**: Paragraphs describing methods, results, discussions
2. **Tables**: Structured data with test conditions, measurements, sample properties
3. **Figures/Diagrams**: Descriptions of plots, graphs, and experimental setups

**Schema (each experiment must match):**
%s

**Extraction Strategy:**
1. **From Tables**: Extract numerical data (velocities, stresses, temperatures, dimensions)
2. **From Text**: Extract material names, methods, treatments, interpretations
3. **From Figures**: Extract trends, comparisons, visual data descriptions
4. **Cross-reference**: Correlate data across different element types and pages

**Critical Rules:**
1. For EVERY field, fill its '_evidence' field with one of:
   - "Page X, Table Y: [exact quote or data]"
   - "Page X, Figure Y: [description]"
   - "Page X, text section: [quote]"
   - "Calculated from [source]"
   - "Not found in paper"
2. Use null for missing data values (not "N/A" or empty strings)
3. Find ALL distinct experiments (multiple rows in tables = multiple experiments)
4. Be precise with units (convert if needed: GPa, MPa, mm, µm, m/s, K)
5. Correlate information across pages and element types

**Output Format:**
- Start with [ and end with ]
- NO markdown, NO explanations, NO code blocks
- ONLY valid JSON array

BEGIN JSON ARRAY:`, doc)
}

// userMessage embeds one chunk of page-tagged fragments.
func userMessage(chunk fragments.Set) string {
	doc, err := json.MarshalIndent(chunk, "", "  ")
	if err != nil {
		doc = []byte("{}")
	}
	return fmt.Sprintf(`Here are the extracted fragments from the scientific paper. Each fragment is labeled with its page number and may come from tables, figures, or text sections:

%s

**Instructions:**
1. Identify all distinct experiments (look for multiple test conditions, samples, or measurements)
2. For tables: each row often represents a separate experiment
3. Cross-reference data across different topics and pages
4. Extract ALL experiments as a JSON array

Output the JSON array now:`, doc)
}
