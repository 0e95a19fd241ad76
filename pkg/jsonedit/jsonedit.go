// Package jsonedit implements the JSON configuration editor's text
// operations: lenient validation, beautifying, line-number gutters and tab
// insertion.
//
// Validation accepts JWCC ("JSON with commas and comments"): trailing commas
// and // or /* */ comments are allowed and removed when the value is
// standardized for the backend.
package jsonedit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// NewValue is the editor content offered for a new config entry.
const NewValue = "{\n\n\n\n\n\n\n\n\n}"

// Indent is the indentation used by Beautify and Format.
const Indent = "  "

// Validate parses text leniently and returns the equivalent standard JSON.
// Errors wrap domain.ErrInvalidJSON.
func Validate(text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidJSON)
	}

	std, err := hujson.Standardize([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidJSON, strings.TrimPrefix(err.Error(), "hujson: "))
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, std); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err)
	}
	return json.RawMessage(compact.Bytes()), nil
}

// Beautify re-serializes text with two-space indentation. When text does not
// parse, the error is returned and text should be left unchanged.
func Beautify(text string) (string, error) {
	raw, err := Validate(text)
	if err != nil {
		return "", err
	}
	return Format(raw), nil
}

// Format renders a stored config value for the editor. An empty value renders
// as an empty object.
func Format(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "{}"
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", Indent); err != nil {
		return string(raw)
	}
	return out.String()
}

// ErrorMessage is the inline message shown under the editor for err.
func ErrorMessage(err error) string {
	return "Invalid JSON format: " + strings.TrimPrefix(err.Error(), domain.ErrInvalidJSON.Error()+": ")
}

// LineCount returns the number of lines the editor shows for text.
func LineCount(text string) int {
	return strings.Count(text, "\n") + 1
}

// LineNumbers renders the gutter content for text: one number per line.
func LineNumbers(text string) string {
	n := LineCount(text)
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// InsertTab replaces the selection [start, end) with a tab character and
// returns the new text and caret position. Positions count runes and are
// clamped to the text.
func InsertTab(text string, start, end int) (string, int) {
	r := []rune(text)
	start = clamp(start, 0, len(r))
	end = clamp(end, start, len(r))

	out := make([]rune, 0, len(r)-(end-start)+1)
	out = append(out, r[:start]...)
	out = append(out, '\t')
	out = append(out, r[end:]...)
	return string(out), start + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
