package formutil

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
)

// ContentType is the media type of bodies built from pairs by NormalizePostData.
const ContentType = "application/x-www-form-urlencoded"

// ErrSkippedField indicates a skipped field reached a byte encoder.
var ErrSkippedField = errors.New("skipped field cannot be encoded")

// NormalizePostData converts a request payload to bytes:
//   - a string is returned as its UTF-8 bytes
//   - a []byte is returned unchanged
//   - a []Pair is normalized with NormalizeHTTPValues and form-urlencoded
//     as key=value pairs joined by '&'
//
// Form encoding escapes a broader set than URL path encoding: '/', '&', '='
// and other delimiters are escaped and spaces become '+'.
//
// Example:
//
//	body, err := formutil.NormalizePostData([]formutil.Pair{
//		{Key: "bar", Value: 1},
//		{Key: "bar", Value: []int{3, 4}},
//	})
//	// body == []byte("bar=1&bar=3&bar=4")
func NormalizePostData(data any) ([]byte, error) {
	switch data := data.(type) {
	case string:
		return []byte(data), nil
	case []byte:
		return data, nil
	case []Pair:
		fields, err := NormalizeHTTPValues(data, nil)
		if err != nil {
			return nil, err
		}
		return EncodeForm(fields)
	}
	return nil, fmt.Errorf("%w: post data of type %T", ErrNotDisplayable, data)
}

// EncodeForm form-urlencodes fields in order as key=value pairs joined by '&'.
// Skipped fields cannot be encoded and yield ErrSkippedField.
func EncodeForm(fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	for i, f := range fields {
		if f.Skipped {
			return nil, fmt.Errorf("key %q: %w", f.Key, ErrSkippedField)
		}
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(string(f.Key)))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(string(f.Value)))
	}
	return buf.Bytes(), nil
}
