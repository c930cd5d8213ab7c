package fragments

import (
	"encoding/json"
	"sort"
)

// Set maps a topic name to its ordered page-tagged fragments. It is the
// intermediate handed from the VLM stage to the LLM stage and the unit the
// chunker partitions.
type Set map[string][]string

// EstimateTokens approximates token count as serialized length over four.
// Deliberately tokenizer-free: the budget only needs to bound model input,
// not match it exactly.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// Chunk partitions a Set into sub-sets whose estimated size stays under
// budget. A topic is atomic: its fragment list is never split across chunks,
// so a single over-budget topic becomes its own oversized chunk rather than
// an error. Concatenating the chunks in order reconstructs the input exactly.
func Chunk(s Set, budget int) []Set {
	if EstimateTokens(marshalSet(s)) < budget {
		return []Set{s}
	}

	var chunks []Set
	current := Set{}
	currentSize := 0
	for _, topic := range orderedTopics(s) {
		topicSize := EstimateTokens(marshalSet(Set{topic: s[topic]}))
		if currentSize+topicSize > budget && len(current) > 0 {
			chunks = append(chunks, current)
			current = Set{}
			currentSize = 0
		}
		current[topic] = s[topic]
		currentSize += topicSize
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// orderedTopics yields the set's keys in vocabulary order; keys outside the
// vocabulary (possible when re-reading a hand-edited fragments file) follow
// in lexical order so nothing is silently lost.
func orderedTopics(s Set) []string {
	known := make([]string, 0, len(s))
	var extra []string
	for k := range s {
		if KnownTopic(k) {
			known = append(known, k)
		} else {
			extra = append(extra, k)
		}
	}
	sort.Slice(known, func(i, j int) bool { return topicIndex[known[i]] < topicIndex[known[j]] })
	sort.Strings(extra)
	return append(known, extra...)
}

func marshalSet(s Set) string {
	b, _ := json.Marshal(s)
	return string(b)
}
