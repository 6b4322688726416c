package util

import (
	"encoding/json"
	"regexp"
	"strings"
)

var hashtagRegex = regexp.MustCompile(`#(\w+)`)

// ExtractTags finds all #hashtags in a string and returns them lower-cased and unique.
func ExtractTags(text string) []string {
	matches := hashtagRegex.FindAllStringSubmatch(text, -1)
	raw := make([]string, 0, len(matches))
	for _, match := range matches {
		raw = append(raw, match[1])
	}
	return NormalizeTags(raw)
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#")))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// TagsToJSON converts a slice of tags into a JSON array string.
func TagsToJSON(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	bytes, _ := json.Marshal(tags)
	return string(bytes)
}

// JSONToTags converts a JSON array string back into a slice of tags.
func JSONToTags(jsonStr string) []string {
	var tags []string
	if jsonStr == "" || jsonStr == "null" {
		return []string{}
	}
	if err := json.Unmarshal([]byte(jsonStr), &tags); err != nil {
		return []string{}
	}
	return tags
}
