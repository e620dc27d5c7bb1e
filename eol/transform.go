// Package eol rewrites and checks line endings in decoded text.
//
// Only two byte patterns count as line endings here: "\r\n" and a "\n" that
// is not preceded by "\r". A lone "\r" is left alone by every operation.
package eol

import "strings"

// NormalizeUnix replaces every "\r\n" with "\n".
func NormalizeUnix(text string) string {
	if !strings.Contains(text, "\r\n") {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			continue
		}
		builder.WriteByte(text[i])
	}
	return builder.String()
}

// NormalizeWindows replaces every "\n" not already preceded by "\r" with
// "\r\n". Existing "\r\n" pairs are copied through untouched.
func NormalizeWindows(text string) string {
	if ValidateWindows(text) {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text) + strings.Count(text, "\n"))
	prevCR := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && !prevCR {
			builder.WriteByte('\r')
		}
		builder.WriteByte(c)
		prevCR = c == '\r'
	}
	return builder.String()
}

// ValidateUnix reports whether text contains no "\r\n".
func ValidateUnix(text string) bool {
	return !strings.Contains(text, "\r\n")
}

// ValidateWindows reports whether every "\n" in text is preceded by "\r".
func ValidateWindows(text string) bool {
	prevCR := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && !prevCR {
			return false
		}
		prevCR = c == '\r'
	}
	return true
}

// Normalize rewrites text to the given convention.
func Normalize(text string, ending Ending) string {
	if ending == Windows {
		return NormalizeWindows(text)
	}
	return NormalizeUnix(text)
}

// Validate reports whether text already follows the given convention.
func Validate(text string, ending Ending) bool {
	if ending == Windows {
		return ValidateWindows(text)
	}
	return ValidateUnix(text)
}
