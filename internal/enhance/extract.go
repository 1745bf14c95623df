package enhance

import (
	"encoding/json"
	"errors"
	"strings"
)

const maxTips = 4

var (
	// ErrNoJSONObject is returned when a response carries no usable JSON object.
	ErrNoJSONObject = errors.New("no JSON object in response")
	// ErrEmptyEnhancement is returned when the decoded object has no text.
	ErrEmptyEnhancement = errors.New("enhancement text is empty")
)

// Enhancement is the payload the text-generation proxy is asked to return.
type Enhancement struct {
	Text string   `json:"text"`
	Tips []string `json:"tips,omitempty"`
}

// ExtractJSONObject returns the first balanced {...} in text. Braces inside
// JSON strings are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start, end, ok := nextObject(text, 0)
	if !ok {
		return "", false
	}
	return text[start:end], true
}

// nextObject scans from offset for the next balanced object and returns its
// bounds as a half-open range.
func nextObject(text string, offset int) (int, int, bool) {
	for {
		rel := strings.IndexByte(text[offset:], '{')
		if rel < 0 {
			return 0, 0, false
		}
		start := offset + rel
		if end, ok := matchBrace(text, start); ok {
			return start, end, true
		}
		offset = start + 1
	}
}

func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// ParseEnhancement decodes the first JSON object in text that unmarshals into
// an Enhancement. Tips are trimmed, blanks dropped, and capped at four.
func ParseEnhancement(text string) (Enhancement, error) {
	offset := 0
	for {
		start, end, ok := nextObject(text, offset)
		if !ok {
			return Enhancement{}, ErrNoJSONObject
		}
		var e Enhancement
		if err := json.Unmarshal([]byte(text[start:end]), &e); err == nil {
			return e.normalize()
		}
		offset = start + 1
	}
}

func (e Enhancement) normalize() (Enhancement, error) {
	e.Text = strings.TrimSpace(e.Text)
	if e.Text == "" {
		return Enhancement{}, ErrEmptyEnhancement
	}
	tips := make([]string, 0, len(e.Tips))
	for _, tip := range e.Tips {
		tip = strings.TrimSpace(tip)
		if tip == "" {
			continue
		}
		tips = append(tips, tip)
		if len(tips) == maxTips {
			break
		}
	}
	e.Tips = tips
	return e, nil
}
