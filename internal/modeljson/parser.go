package modeljson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports where a model response stopped being valid JSON and
// carries whatever complete objects could still be salvaged from it.
type ParseError struct {
	Offset   int64
	Context  string
	Salvaged []map[string]any
	Dropped  int
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model json at offset %d: %v (salvaged %d, dropped %d)", e.Offset, e.Err, len(e.Salvaged), e.Dropped)
}

func (e *ParseError) Unwrap() error { return e.Err }

const contextWindow = 100

// Parse extracts a JSON value from a raw model response. Model output is
// untrusted free text: it may wrap JSON in a markdown fence or surround it
// with prose, so the response is cleaned and sliced down to the outermost
// bracket pair before decoding. On failure the returned error is a
// *ParseError with the decoder offset, a bounded context window and any
// objects recovered by Salvage.
func Parse(raw string) (any, error) {
	candidate := sliceJSON(StripFence(raw))
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		perr := &ParseError{Err: err}
		if serr, ok := err.(*json.SyntaxError); ok {
			perr.Offset = serr.Offset
			perr.Context = contextAround(candidate, serr.Offset)
		}
		perr.Salvaged, perr.Dropped = Salvage(candidate)
		return nil, perr
	}
	return v, nil
}

// ParseList is Parse with the top-level shape coerced to a list: a single
// object is wrapped in a one-element slice.
func ParseList(raw string) ([]any, error) {
	v, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case nil:
		return nil, nil
	default:
		return []any{t}, nil
	}
}

// StripFence removes a single leading/trailing markdown code fence.
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 2 {
		s = strings.Join(lines[1:len(lines)-1], "\n")
	}
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// sliceJSON narrows the text to the outermost bracket pair matching the
// leading top-level shape. When the text starts with neither bracket, the
// earliest opening bracket of either kind wins and the latest closing
// bracket of either kind ends the slice.
func sliceJSON(s string) string {
	var start, end int
	switch {
	case strings.HasPrefix(s, "["):
		start, end = strings.Index(s, "["), strings.LastIndex(s, "]")
	case strings.HasPrefix(s, "{"):
		start, end = strings.Index(s, "{"), strings.LastIndex(s, "}")
	default:
		start = earliestBracket(s)
		end = max(strings.LastIndex(s, "]"), strings.LastIndex(s, "}"))
	}
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}

func earliestBracket(s string) int {
	a, o := strings.Index(s, "["), strings.Index(s, "{")
	switch {
	case a == -1:
		return o
	case o == -1:
		return a
	default:
		return min(a, o)
	}
}

func contextAround(s string, offset int64) string {
	lo := int(offset) - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := int(offset) + contextWindow
	if hi > len(s) {
		hi = len(s)
	}
	return s[lo:hi]
}

// objectPattern matches brace-balanced objects with at most one level of
// nesting. Deeper nesting can salvage truncated or merged objects; that
// shallow behavior is kept on purpose since candidate records are flat
// field->value mappings.
var objectPattern = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

// Salvage recovers individually parseable JSON objects from otherwise
// unparseable text. It never fails: substrings that do not decode are
// dropped and counted.
func Salvage(raw string) (objs []map[string]any, dropped int) {
	for _, m := range objectPattern.FindAllString(raw, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err != nil {
			dropped++
			continue
		}
		objs = append(objs, obj)
	}
	return objs, dropped
}
