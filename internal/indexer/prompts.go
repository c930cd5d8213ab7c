package indexer

import "fmt"

const identifyPrompt = `Carefully scan this ENTIRE page and list EVERY element you see.

Look for:
- Data tables (with rows/columns of experimental values)
- Figures/graphs (with plots, axes, data curves)
- Text paragraphs (introduction, methods, results, discussion)
- Figure captions (labeled as "FIG. X" or "Figure X")
- Equations

For EACH element found, output:
{"type": "data_table/figure/text_paragraph/caption/equation", "description": "brief description", "contains_data": true/false}

IMPORTANT:
- List EVERY element, even if the page seems simple
- Don't skip text sections or captions
- If the page has a title/abstract/introduction, mark it as "text_paragraph"

Output as JSON array:
[{"type": "text_paragraph", "description": "Abstract and introduction", "contains_data": false}]

Output ONLY valid JSON array, no markdown:`

func tablePrompt(description string) string {
	return fmt.Sprintf(`Extract the COMPLETE table as structured JSON.

Table: %s

Output format:
{
  "description": "Brief description",
  "headers": ["Column1", "Column2", ...],
  "rows": [
    {"Column1": "value1", "Column2": "value2", "Column3": "value3", ...}
  ]
}

CRITICAL RULES:
- Extract EVERY ROW completely (all columns for each row)
- If a cell is empty, use null - but include ALL column keys
- Read carefully - don't skip columns or merge cells
- Preserve units in headers (mm, m/s, K, GPa, etc.)
- Keep all numerical precision

Example of a complete row:
{"TEST": "AGA3a", "Impactor/thickness, mm": "Al, 1", "Sample thickness, mm": "1.986", "Impact velocity, m/s": "105", "Initial temperature K": "296"}

Output ONLY valid JSON, no markdown, no explanations:`, description)
}

func figurePrompt(description string) string {
	return fmt.Sprintf(`Carefully analyze this figure/graph and extract data as JSON.

Figure: %s

Output format:
{
  "caption": "Full caption text from the figure",
  "type": "line_graph/bar_chart/scatter_plot/diagram",
  "x_axis": {"label": "X axis label", "unit": "unit (e.g., mm, s, K)", "range": [min_value, max_value]},
  "y_axis": {"label": "Y axis label", "unit": "unit (e.g., MPa, m/s)", "range": [min_value, max_value]},
  "data_series": [
    {"name": "Series/curve name or temperature", "data_points": [[x1, y1], [x2, y2], [x3, y3]]}
  ],
  "legend": ["legend item 1", "legend item 2"],
  "annotations": ["annotation text 1"]
}

CRITICAL INSTRUCTIONS:
- Read the axis scales and units CAREFULLY
- Extract at least 5-10 data points per curve/series as [x, y] coordinate pairs
- If there are multiple curves, create separate entries in data_series
- Include ALL legend items and any text annotations on the plot

Output ONLY valid JSON, no markdown:`, description)
}

func textPrompt(description string) string {
	return fmt.Sprintf(`Extract ALL text from this section:

Section: %s

Transcribe the complete text including:
- All paragraphs
- Material descriptions
- Experimental details
- Numerical values and units
- Equations or formulas

Preserve structure and precision. Output the text directly:`, description)
}
