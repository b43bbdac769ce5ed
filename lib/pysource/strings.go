// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package pysource

import "strings"

// decodeStrings decodes one or more adjacent Python string literals
// ('a' "b" concatenate). Formatted strings are rejected because their
// value is only known at run time.
func decodeStrings(source string) (string, bool) {
	var out strings.Builder
	rest := strings.TrimSpace(source)
	if rest == "" {
		return "", false
	}

	for rest != "" {
		prefixEnd := strings.IndexAny(rest, `"'`)
		if prefixEnd < 0 {
			return "", false
		}
		prefix := strings.ToLower(rest[:prefixEnd])
		if strings.Contains(prefix, "f") || strings.Trim(prefix, "rbu") != "" {
			return "", false
		}
		raw := strings.Contains(prefix, "r")
		rest = rest[prefixEnd:]

		quote := rest[:1]
		if strings.HasPrefix(rest, quote+quote+quote) {
			quote = quote + quote + quote
		}
		body, remaining, ok := cutLiteral(rest[len(quote):], quote)
		if !ok {
			return "", false
		}
		if raw {
			out.WriteString(body)
		} else {
			out.WriteString(unescape(body))
		}
		rest = strings.TrimSpace(remaining)
	}
	return out.String(), true
}

// cutLiteral returns the literal body up to the closing quote and the
// text after it. A backslash always protects the next character, in
// raw literals too.
func cutLiteral(text, quote string) (string, string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(text[i:], quote) {
			return text[:i], text[i+len(quote):], true
		}
	}
	return "", "", false
}

var escapes = strings.NewReplacer(
	`\\`, `\`,
	`\'`, `'`,
	`\"`, `"`,
	`\n`, "\n",
	`\t`, "\t",
	`\r`, "\r",
	"\\\n", "",
)

func unescape(body string) string {
	return escapes.Replace(body)
}
