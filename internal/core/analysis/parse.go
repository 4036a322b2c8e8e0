// Package analysis contains the pure logic of the scoring contract: the
// instruction prompt sent to the oracle and the parser that pulls a verdict
// out of its free-text reply.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Score is the traffic-light rating of a check-in.
type Score string

const (
	ScoreGreen  Score = "green"
	ScoreYellow Score = "yellow"
	ScoreRed    Score = "red"
)

// Blocker classifies what, if anything, is holding the staff member back.
type Blocker string

const (
	BlockerNone     Blocker = "NONE"
	BlockerEmployee Blocker = "EMPLOYEE"
	BlockerSystem   Blocker = "SYSTEM"
	BlockerExternal Blocker = "EXTERNAL"
)

// Result is a reply that satisfied the contract.
type Result struct {
	Score    Score
	Blocker  Blocker
	Reason   string
	Message  string
	NextStep string
}

// ErrNoJSON is returned when the reply holds no parseable JSON object.
var ErrNoJSON = errors.New("no JSON object found in oracle reply")

// ExtractJSON returns the first balanced, syntactically valid {...} substring of
// text. Braces inside JSON strings (including escaped quotes) do not count.
func ExtractJSON(text string) (string, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSON
}

// matchBrace returns the index of the brace closing the one at open, or -1.
func matchBrace(text string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(text); i++ {
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
				return i
			}
		}
	}
	return -1
}

type wireResult struct {
	Score    *string `json:"score"`
	Blocker  *string `json:"blocker"`
	Reason   *string `json:"reason"`
	Message  *string `json:"message"`
	NextStep *string `json:"nextStep"`
}

// Parse extracts and validates the contract object from a free-text reply.
// Every field is required; score and blocker must be in their enumerations.
func Parse(reply string) (Result, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return Result{}, err
	}

	var w wireResult
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Result{}, fmt.Errorf("decode oracle JSON: %w", err)
	}

	var missing []string
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"score", w.Score},
		{"blocker", w.Blocker},
		{"reason", w.Reason},
		{"message", w.Message},
		{"nextStep", w.NextStep},
	} {
		if f.v == nil || strings.TrimSpace(*f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Result{}, fmt.Errorf("oracle reply missing fields: %s", strings.Join(missing, ", "))
	}

	score := Score(strings.ToLower(strings.TrimSpace(*w.Score)))
	if !score.Valid() {
		return Result{}, fmt.Errorf("invalid score %q (want green, yellow, or red)", *w.Score)
	}
	blocker := Blocker(strings.ToUpper(strings.TrimSpace(*w.Blocker)))
	if !blocker.Valid() {
		return Result{}, fmt.Errorf("invalid blocker %q (want NONE, EMPLOYEE, SYSTEM, or EXTERNAL)", *w.Blocker)
	}

	return Result{
		Score:    score,
		Blocker:  blocker,
		Reason:   strings.TrimSpace(*w.Reason),
		Message:  strings.TrimSpace(*w.Message),
		NextStep: strings.TrimSpace(*w.NextStep),
	}, nil
}

// Valid reports whether s is a known score.
func (s Score) Valid() bool {
	switch s {
	case ScoreGreen, ScoreYellow, ScoreRed:
		return true
	}
	return false
}

// Valid reports whether b is a known blocker.
func (b Blocker) Valid() bool {
	switch b {
	case BlockerNone, BlockerEmployee, BlockerSystem, BlockerExternal:
		return true
	}
	return false
}
