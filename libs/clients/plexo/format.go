package plexo

import (
	"bytes"
	"regexp"
)

// A member name in canonical text is always preceded by '{' or ','; inside a
// string value a quote is always escaped. Anchoring on that keeps substrings
// like "XAmount" and string contents out of the match.
var amountMember = regexp.MustCompile(`[{,]"(?:Amount|BilledAmount|TaxedAmount)":-?\d+`)

// FormatAmounts writes integral money members of canonical text with one
// decimal place, e.g. "Amount":10 becomes "Amount":10.0.
//
// The gateway recomputes the signature over text rendered this way.
func FormatAmounts(text []byte) []byte {
	matches := amountMember.FindAllIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var buf bytes.Buffer
	buf.Grow(len(text) + 2*len(matches))

	last := 0
	for _, m := range matches {
		end := m[1]
		if end >= len(text) || (text[end] != ',' && text[end] != '}') {
			continue
		}
		buf.Write(text[last:end])
		buf.WriteString(".0")
		last = end
	}
	buf.Write(text[last:])

	return buf.Bytes()
}
