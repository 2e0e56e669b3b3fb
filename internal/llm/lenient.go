package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe     = regexp.MustCompile("^```(?:json)?[ \\t]*\\n?")
	fenceCloseRe    = regexp.MustCompile("\\n?```[ \\t]*$")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// DecodeLenient recovers a JSON document from free-form model output. The
// cleanup heuristics run in a fixed order: strip fence markers, remove
// trailing commas before closing brackets, try a direct parse, and finally
// extract the outermost object between the first '{' and the last '}'. If
// nothing parses the call fails with a *ParseError.
func DecodeLenient(raw string) (json.RawMessage, error) {
	s := strings.TrimSpace(raw)
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(s)

	if s != "" && json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	return nil, &ParseError{Raw: raw}
}
