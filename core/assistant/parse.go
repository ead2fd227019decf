package assistant

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	MinScore = 0
	MaxScore = 1000
)

var (
	scoreRegex = regexp.MustCompile(`(?i)nota\s+final\s*[:=\-]?\s*\**\s*(\d+)`)
	fenceRegex = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

	errNoObject = errors.New("no JSON object found")
)

// Unparseable is returned when a model reply does not hold the expected structure.
// Raw keeps the reply so it can still be shown.
type Unparseable struct {
	Raw string
	Err error
}

func (u *Unparseable) Error() string {
	return "unparseable model output: " + u.Err.Error()
}

func (u *Unparseable) Unwrap() error { return u.Err }

// ExtractScore reads the "nota final: N" score of an essay evaluation.
// It defaults to 0 and is clamped to [0, 1000].
func ExtractScore(text string) int {
	m := scoreRegex.FindStringSubmatch(text)
	if m == nil {
		return MinScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// more digits than an int holds
		return MaxScore
	}
	return ClampScore(n)
}

func ClampScore(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// DecodeObject decodes the first top-level JSON object of text into dst and validates it.
// Markdown code fences are looked into first. Any failure is an *Unparseable.
func DecodeObject(text string, dst interface{}, validate *validator.Validate) error {
	candidates := make([]string, 0, 2)
	for _, m := range fenceRegex.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, m[1])
	}
	candidates = append(candidates, text)

	var lastErr error = errNoObject
	for _, c := range candidates {
		err := decodeFirstObject(c, dst)
		if err == nil {
			if validate != nil {
				if err = validate.Struct(dst); err != nil {
					return &Unparseable{Raw: text, Err: err}
				}
			}
			return nil
		}
		lastErr = err
	}
	return &Unparseable{Raw: text, Err: lastErr}
}

// decodeFirstObject tries the top-level '{' positions of s in order until one starts a decodable object.
// Objects nested in a candidate that failed are never tried on their own.
func decodeFirstObject(s string, dst interface{}) error {
	var lastErr error = errNoObject
	for _, i := range topLevelBraces(s) {
		resetValue(dst)
		err := json.NewDecoder(strings.NewReader(s[i:])).Decode(dst)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	resetValue(dst)
	return lastErr
}

// topLevelBraces returns the offsets of the '{' found outside any open object.
// Quotes only count inside an object, so prose apostrophes and quotes are ignored.
func topLevelBraces(s string) []int {
	var (
		starts   []int
		depth    int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				starts = append(starts, i)
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return starts
}

// resetValue zeroes what dst points to so a failed attempt leaves nothing behind.
func resetValue(dst interface{}) {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		v.Elem().Set(reflect.Zero(v.Elem().Type()))
	}
}
