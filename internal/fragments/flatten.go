package fragments

import (
	"encoding/json"
	"fmt"
	"strings"

	"spallflow/internal/indexer"
)

const (
	fallbackDataTopic = "experimental_conditions"
	fallbackTextTopic = "sample_info"
)

// Flatten regroups per-page structures into the topic-keyed fragment set the
// LLM stage consumes. Every fragment keeps a "[Page N] " marker so provenance
// survives the regrouping. The returned set always carries every vocabulary
// topic, empty or not, so downstream consumers never need key-existence
// checks.
func Flatten(pages []indexer.PageStructure) Set {
	out := Set{}
	for _, t := range Topics {
		out[t] = []string{}
	}
	for _, p := range pages {
		marker := fmt.Sprintf("[Page %d] ", p.PageNumber)
		for _, tbl := range p.Tables {
			frag := marker + marshalFragment(tbl)
			assign(out, frag, topicsForText(tbl.Description+" "+strings.Join(tbl.Headers, " ")), fallbackDataTopic)
		}
		for _, fig := range p.Figures {
			frag := marker + marshalFragment(fig)
			axes := fig.XAxis.Label + " " + fig.YAxis.Label
			assign(out, frag, topicsForText(fig.Caption+" "+axes), fallbackDataTopic)
		}
		for _, txt := range p.TextSections {
			frag := marker + txt.Content
			assign(out, frag, topicsForText(txt.Description+" "+txt.Content), fallbackTextTopic)
		}
	}
	return out
}

// assign places one fragment under every matched topic, or under the fallback
// when nothing matched. Labels outside the vocabulary are dropped.
func assign(out Set, frag string, topics []string, fallback string) {
	placed := false
	for _, t := range topics {
		if !KnownTopic(t) {
			continue
		}
		out[t] = append(out[t], frag)
		placed = true
	}
	if !placed {
		out[fallback] = append(out[fallback], frag)
	}
}

// topicsForText matches keywords against the lowercased text, in vocabulary
// order so the result is deterministic.
func topicsForText(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, topic := range Topics {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(lower, kw) {
				matched = append(matched, topic)
				break
			}
		}
	}
	return matched
}

func marshalFragment(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
