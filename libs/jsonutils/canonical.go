package jsonutils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidUTF8 is returned when a string or key is not valid utf-8
	ErrInvalidUTF8 = errors.New("canonical: invalid utf-8 in string")
	// ErrInvalidNumber is returned for json.Number values that are not json numbers
	ErrInvalidNumber = errors.New("canonical: invalid number literal")
	// ErrUnsupportedFloat is returned for NaN and infinite floats
	ErrUnsupportedFloat = errors.New("canonical: unsupported float value")
)

const hex = "0123456789abcdef"

// MarshalCanonical returns the canonical json text of v: object keys sorted by
// code point at every depth, array order kept, no whitespace outside strings.
//
// v may be a tree of map[string]interface{}, []interface{} and primitives
// (string, bool, nil, json.Number, integers, floats, decimal.Decimal,
// json.RawMessage). Anything else is marshalled with encoding/json first and
// decoded back with UseNumber, so numeric text survives unchanged.
func MarshalCanonical(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case string:
		return writeString(buf, x)
	case json.Number:
		if !isNumber(string(x)) {
			return fmt.Errorf("%w: %q", ErrInvalidNumber, string(x))
		}
		buf.WriteString(string(x))
	case float64:
		return writeFloat(buf, x)
	case float32:
		return writeFloat(buf, x)
	case int:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int8:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int16:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int32:
		buf.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case uint:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(x, 10))
	case decimal.Decimal:
		buf.WriteString(x.String())
	case map[string]interface{}:
		return writeObject(buf, x)
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case json.RawMessage:
		tree, err := decodeTree(x)
		if err != nil {
			return err
		}
		return encodeCanonical(buf, tree)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("canonical: failed to marshal %T: %w", x, err)
		}
		tree, err := decodeTree(raw)
		if err != nil {
			return err
		}
		return encodeCanonical(buf, tree)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, m map[string]interface{}) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// byte order of valid utf-8 is code point order
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeCanonical(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeString escapes the way ECMAScript JSON.stringify does: only the quote,
// the backslash and control characters.
func writeString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}

	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf.WriteString(s[start:i])
		switch c {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hex[c>>4])
			buf.WriteByte(hex[c&0xF])
		}
		start = i + 1
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
	return nil
}

// writeFloat uses the shortest round trip form; encoding/json already
// renders floats the way ECMAScript does, except for negative zero.
func writeFloat[F float32 | float64](buf *bytes.Buffer, f F) error {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return ErrUnsupportedFloat
	}
	if f == 0 {
		buf.WriteByte('0')
		return nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFloat, err)
	}
	buf.Write(b)
	return nil
}

func decodeTree(raw []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("canonical: failed to decode json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("canonical: trailing data after json value")
	}
	return tree, nil
}

// isNumber reports whether s is a json number literal.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[i] == '-' {
		i++
		if i == len(s) {
			return false
		}
	}

	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}

	if i < len(s) && s[i] == '.' {
		i++
		if i == len(s) || !isDigit(s[i]) {
			return false
		}
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if i == len(s) || !isDigit(s[i]) {
			return false
		}
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
