package questiongen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// snippetLen is the number of runes of raw text kept in MalformedResponse.
const snippetLen = 160

// maxDecodeDepth bounds how many times a JSON string may wrap the object.
const maxDecodeDepth = 3

// step is one fallible stage of the extraction pipeline.
type step struct {
	name string
	fn   func(string) (string, error)
}

// pipeline runs in order; every stage receives the previous output.
var pipeline = []step{
	{"trim", trimStep},
	{"strip-think", stripThinkStep},
	{"strip-fence", stripFenceStep},
	{"unquote", unquoteStep},
	{"brace-scan", braceScanStep},
}

// ExtractJSON reduces free model text to a JSON object. It tolerates
// fenced code blocks, prose around the object, reasoning blocks and
// objects double-encoded as JSON strings.
func ExtractJSON(raw string) (map[string]any, error) {
	return extract(raw, raw, 0)
}

func extract(text, original string, depth int) (map[string]any, error) {
	cur := text
	for _, s := range pipeline {
		out, err := s.fn(cur)
		if err != nil {
			return nil, &MalformedResponse{Step: s.name, Reason: err.Error(), Snippet: snippet(original)}
		}
		cur = out
	}

	var v any
	if err := json.Unmarshal([]byte(cur), &v); err != nil {
		return nil, &MalformedResponse{Step: "decode", Reason: err.Error(), Snippet: snippet(original)}
	}

	switch val := v.(type) {
	case map[string]any:
		return val, nil
	case string:
		if depth >= maxDecodeDepth {
			return nil, &MalformedResponse{Step: "decode", Reason: "too many levels of string encoding", Snippet: snippet(original)}
		}
		return extract(val, original, depth+1)
	default:
		return nil, &MalformedResponse{Step: "decode", Reason: fmt.Sprintf("decoded %T, want object", v), Snippet: snippet(original)}
	}
}

func trimStep(s string) (string, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if s == "" {
		return "", fmt.Errorf("empty response")
	}
	return s, nil
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

func stripThinkStep(s string) (string, error) {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, "")), nil
}

// stripFenceStep keeps the body between the first opening fence and the
// last closing fence. Text whose brace span already decodes is left alone,
// so fences inside JSON strings survive. JSON on the opening line after
// the info word is kept. An unterminated fence keeps everything after it.
func stripFenceStep(s string) (string, error) {
	if span, err := braceScanStep(s); err == nil && json.Valid([]byte(span)) {
		return s, nil
	}
	start := strings.Index(s, "```")
	if start < 0 {
		return s, nil
	}
	line, rest, multiline := strings.Cut(s[start+3:], "\n")
	body := line
	if multiline {
		body = rest
		if open := strings.IndexByte(line, '{'); open >= 0 && !strings.ContainsAny(strings.TrimSpace(line[:open]), " \t") {
			body = line[open:] + "\n" + rest
		}
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), nil
}

// unquoteStep decodes text that is itself a JSON string literal.
func unquoteStep(s string) (string, error) {
	for i := 0; i < maxDecodeDepth && strings.HasPrefix(s, `"`); i++ {
		var inner string
		if err := json.Unmarshal([]byte(s), &inner); err != nil {
			break
		}
		s = strings.TrimSpace(inner)
	}
	return s, nil
}

// braceScanStep keeps the span from the first '{' to the last '}'.
func braceScanStep(s string) (string, error) {
	open := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if open < 0 || end < open {
		return "", fmt.Errorf("no JSON object found")
	}
	return s[open : end+1], nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	r := []rune(s)
	return string(r[:snippetLen]) + "..."
}
