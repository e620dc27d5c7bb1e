// Package charset detects the character encoding of file content and decodes
// it to a Go string.
package charset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// MinConfidence is the detector confidence needed to trust its answer.
	MinConfidence = 0.5

	// DefaultEncoding is used when detection is inconclusive.
	DefaultEncoding = "UTF-8"
)

var (
	// ErrUndecodable is returned when content is not valid in the chosen encoding.
	ErrUndecodable = errors.New("content cannot be decoded")

	// ErrBinaryContent is returned for content that looks binary.
	ErrBinaryContent = errors.New("content looks binary")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// chardet reports a few names that neither IANA nor WHATWG index knows.
var nameAliases = map[string]string{
	"GB-18030":     "GB18030",
	"ISO-8859-8-I": "ISO-8859-8",
}

// DetectedEncoding is the detector's best guess for a byte stream.
type DetectedEncoding struct {
	Name       string
	Confidence float64 // 0..1
}

// Confident reports whether the guess clears MinConfidence.
func (d DetectedEncoding) Confident() bool {
	return d.Name != "" && d.Confidence >= MinConfidence
}

// Detect runs statistical charset detection over all of data.
// An empty slice or an inconclusive detector yields a zero DetectedEncoding.
func Detect(data []byte) DetectedEncoding {
	if len(data) == 0 {
		return DetectedEncoding{}
	}

	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil {
		return DetectedEncoding{}
	}

	return DetectedEncoding{
		Name:       result.Charset,
		Confidence: float64(result.Confidence) / 100,
	}
}

// Decode detects the encoding of data and returns its text content.
// A leading byte-order mark is consumed. When detection is not confident,
// or names a charset with no decoder, data is decoded as UTF-8.
func Decode(data []byte) (string, DetectedEncoding, error) {
	detected := Detect(data)

	var enc encoding.Encoding
	name := DefaultEncoding
	if detected.Confident() && !strings.EqualFold(detected.Name, DefaultEncoding) {
		if enc = lookupEncoding(detected.Name); enc != nil {
			name = detected.Name
		}
	}

	wide := isWideUnicode(name)
	if !wide && IsBinaryContent(data) {
		return "", detected, ErrBinaryContent
	}

	// 7-bit content reads the same under every ASCII-compatible charset.
	if !wide && isASCII(data) {
		return string(data), detected, nil
	}

	if enc == nil {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", detected, fmt.Errorf("%w: invalid %s", ErrUndecodable, DefaultEncoding)
		}
		return string(data), detected, nil
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), data)
	if err != nil {
		return "", detected, fmt.Errorf("%w: %s: %v", ErrUndecodable, name, err)
	}
	return string(decoded), detected, nil
}

// Encode returns text as UTF-8 bytes, optionally prefixed with a BOM.
func Encode(text string, withBOM bool) []byte {
	if !withBOM {
		return []byte(text)
	}
	out := make([]byte, 0, len(utf8BOM)+len(text))
	out = append(out, utf8BOM...)
	return append(out, text...)
}

// lookupEncoding resolves a detector charset name to a decoder, or nil.
func lookupEncoding(name string) encoding.Encoding {
	if alias, ok := nameAliases[name]; ok {
		name = alias
	}
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc
	}
	return nil
}

func isWideUnicode(name string) bool {
	upper := strings.ToUpper(name)
	return strings.HasPrefix(upper, "UTF-16") || strings.HasPrefix(upper, "UTF-32")
}
