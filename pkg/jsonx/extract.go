// Package jsonx extracts JSON payloads from language-model responses
// that may arrive wrapped in markdown code fences or surrounded by prose.
package jsonx

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

// Extract returns the most plausible JSON substring of text.
//
// Strategy, in order: the body of the first triple-backtick fence
// (with an optional "json" tag), then bare text that already starts
// with an object or array, then the span between the first '{' and the
// last '}'. If nothing matches, the trimmed input is returned and left
// for json.Unmarshal to reject.
func Extract(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return text
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}
