// Package utils holds the naming-case helpers shared by the type mapper
// and the generators.
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// RemoveAccents converts accented characters to their base forms.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitCamelCase splits a camelCase or PascalCase string into words,
// keeping acronym runs together ("XMLHttp" -> "XML", "Http").
func SplitCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var parts []string
	var current strings.Builder

	rs := []rune(s)
	for i, r := range rs {
		isNewWord := false
		if i > 0 && isUppercase(r) {
			if !isUppercase(rs[i-1]) {
				isNewWord = true
			} else if i < len(rs)-1 && !isUppercase(rs[i+1]) {
				isNewWord = true
			}
		}
		if isNewWord && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUppercase(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// splitWords breaks any casing convention (camel, Pascal, snake, kebab,
// dotted paths) into word parts.
func splitWords(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = RemoveAccents(s)

	var all []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		all = append(all, SplitCamelCase(part)...)
	}
	return all
}

// ToPascalCaseAdvanced converts a string to PascalCase, splitting on both
// separators and internal case changes.
func ToPascalCaseAdvanced(s string) string {
	parts := splitWords(s)
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		if len(p) > 1 {
			b.WriteString(strings.ToLower(p[1:]))
		}
	}
	return b.String()
}

// ToCamelCaseAdvanced converts a string to camelCase.
func ToCamelCaseAdvanced(s string) string {
	p := ToPascalCaseAdvanced(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// ToSnakeCaseAdvanced converts a string to snake_case.
func ToSnakeCaseAdvanced(s string) string {
	parts := splitWords(s)
	if len(parts) == 0 {
		return ""
	}
	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return strings.Join(parts, "_")
}
