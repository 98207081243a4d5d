// Package jsmath rewrites TeX-style math delimiters in HTML-ish text into
// the span/div tags the jsMath client library picks up.
package jsmath

import (
	"strings"
)

// MathParse turns a string with $...$ and $$...$$ runs into pure HTML:
//
//   - $ text $   becomes <span class="math"> text </span>
//   - $$ text $$ becomes <div class="math"> text </div>
//   - \[ text \] becomes <div class="math"> text </div>
//   - \$ becomes a literal $
//
// Unmatched delimiters are closed at the end of the input, and newlines
// inside a math run collapse to spaces so jsMath sees a single line.
// Content inside <script> tags is left untouched.
func MathParse(s string) string {
	if !strings.ContainsAny(s, "$\\") {
		return s
	}
	var out strings.Builder
	for len(s) > 0 {
		open := indexFold(s, "<script")
		if open == -1 {
			out.WriteString(parseDollars(s))
			break
		}
		out.WriteString(parseDollars(s[:open]))
		end := indexFold(s[open:], "</script>")
		if end == -1 {
			// Unterminated script tag: leave the rest alone.
			out.WriteString(s[open:])
			break
		}
		end += open + len("</script>")
		out.WriteString(s[open:end])
		s = s[end:]
	}
	return out.String()
}

// indexFold is a case-insensitive strings.Index; tag names match in any
// case the same way an HTML parser treats them.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

// parseDollars handles the delimiter rewriting on text that is known to be
// outside any <script> tag.
func parseDollars(s string) string {
	// First replace \[ and \] by the div form.
	for {
		i := strings.Index(s, `\[`)
		if i == -1 {
			break
		}
		s = s[:i] + `<div class="math">` + s[i+2:]
		j := strings.Index(s, `\]`)
		if j == -1 {
			// Missing right-hand delimiter, so add one.
			s += "</div>"
		} else {
			s = s[:j] + "</div>" + s[j+2:]
		}
	}

	// t holds the parsed-so-far prefix; s shrinks to the unparsed tail.
	var t strings.Builder
	for {
		i := strings.Index(s, "$")
		if i == -1 {
			t.WriteString(s)
			return t.String()
		}
		if i > 0 && s[i-1] == '\\' {
			// Escaped dollar sign: emit a literal $ and keep going.
			t.WriteString(s[:i-1])
			t.WriteString("$")
			s = s[i+1:]
			continue
		}

		typ := "span"
		if i+1 < len(s) && s[i+1] == '$' {
			typ = "div"
		}

		// Find the matching $ and form the span or div.
		j := strings.Index(s[i+2:], "$")
		if j == -1 {
			j = len(s)
			s += "$"
			if typ == "div" {
				s += "$$"
			}
		} else {
			j += i + 2
		}
		var txt string
		if typ == "div" {
			txt = s[i+2 : j]
		} else {
			txt = s[i+1 : j]
		}
		t.WriteString(s[:i])
		t.WriteString(`<` + typ + ` class="math">`)
		t.WriteString(strings.Join(strings.Split(txt, "\n"), " "))
		t.WriteString(`</` + typ + `>`)
		s = s[j+1:]
		if typ == "div" && len(s) > 0 {
			s = s[1:]
		}
	}
}
