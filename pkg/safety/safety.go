// Package safety screens inbound chat text before it reaches the
// extraction pipeline. The checks are heuristic: a denylist of markup and
// code-execution patterns plus a special-character ratio, matching what a
// public chat endpoint can reject without understanding the message.
package safety

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxMessageLength bounds raw inbound text.
	MaxMessageLength = 5000
	// MaxSanitizedLength bounds text after sanitization.
	MaxSanitizedLength = 2000
	// MaxSpecialCharRatio is the admissible share of characters that are
	// neither alphanumeric nor whitespace.
	MaxSpecialCharRatio = 0.3
)

var (
	ErrEmpty    = errors.New("input is empty")
	ErrTooLong  = errors.New("input exceeds maximum length")
	ErrUnsafe   = errors.New("input matches a blocked pattern")
	ErrTooNoisy = errors.New("input has too many special characters")
)

// dangerousPatterns flag script injection and code-execution attempts.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)system\s*\(`),
	regexp.MustCompile(`(?i)file://`),
	regexp.MustCompile(`(?i)data:.*base64`),
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Validate returns a non-nil error when the text must not be processed.
func Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmpty
	}
	if len(text) > MaxMessageLength {
		return ErrTooLong
	}

	for _, p := range dangerousPatterns {
		if p.MatchString(text) {
			return ErrUnsafe
		}
	}

	special := 0
	total := 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total > 0 && float64(special)/float64(total) > MaxSpecialCharRatio {
		return ErrTooNoisy
	}

	return nil
}

// Sanitize strips markup, collapses whitespace, and caps the length.
// Used on text that has already passed Validate but will be echoed back
// into prompts.
func Sanitize(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	if len(text) > MaxSanitizedLength {
		// Back up to a rune boundary so the cut never splits a
		// multi-byte character.
		cut := MaxSanitizedLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
