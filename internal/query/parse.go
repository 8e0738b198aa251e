package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prefixes recognized at the start of a criterion. At most one is stripped.
const (
	prefixNot = "NOT:"
	prefixOr  = "OR:"
	prefixAnd = "AND:"
)

// ParseCriteria parses every raw criterion string, in order.
// The first malformed string aborts parsing with a *ParseError.
func ParseCriteria(raw []string) ([]Criterion, error) {
	criteria := make([]Criterion, 0, len(raw))
	for _, s := range raw {
		c, err := ParseCriterion(s)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// ParseCriterion parses one criterion of the form
//
//	[AND:|OR:|NOT:]field=value[,value...]
//
// Prefixes are case-insensitive. NOT: negates and leaves Logic at AND.
// Only the first '=' separates field from values. Field and values are
// trimmed and lower-cased.
func ParseCriterion(raw string) (Criterion, error) {
	c := Criterion{Logic: LogicAnd}
	body := raw

	switch {
	case hasPrefixFold(body, prefixNot):
		c.Negate = true
		body = body[len(prefixNot):]
	case hasPrefixFold(body, prefixOr):
		c.Logic = LogicOr
		body = body[len(prefixOr):]
	case hasPrefixFold(body, prefixAnd):
		body = body[len(prefixAnd):]
	}

	field, values, found := strings.Cut(body, "=")
	if !found {
		return Criterion{}, &ParseError{Input: raw, Reason: "missing separator '='"}
	}

	c.Field = normalize(field)
	if c.Field == "" {
		return Criterion{}, &ParseError{Input: raw, Reason: "empty field name"}
	}

	parts := strings.Split(values, ",")
	c.Values = make([]string, len(parts))
	for i, p := range parts {
		c.Values[i] = normalize(p)
	}

	return c, nil
}

// Fields returns the distinct field names referenced by criteria, in
// first-seen order.
func Fields(criteria []Criterion) []string {
	seen := make(map[string]bool, len(criteria))
	var fields []string
	for _, c := range criteria {
		if seen[c.Field] {
			continue
		}
		seen[c.Field] = true
		fields = append(fields, c.Field)
	}
	return fields
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// normalize trims and lower-cases user input.
func normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
