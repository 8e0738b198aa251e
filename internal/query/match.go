package query

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/shelf/internal/record"
)

// Match reports whether rec satisfies every predicate.
// An empty predicate list matches everything.
func Match(rec record.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Matches(rec) {
			return false
		}
	}
	return true
}

// Apply returns the records that satisfy every predicate, in source order.
func Apply(records []record.Record, preds []Predicate) []record.Record {
	var out []record.Record
	for _, rec := range records {
		if Match(rec, preds) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches evaluates a single predicate against rec.
//
// Each target is tested with ValueMatches; the results combine with the
// predicate's Logic and are then flipped if Negate is set. A record that
// lacks the field never matches.
func (p Predicate) Matches(rec record.Record) bool {
	_, actual, ok := rec.Lookup(p.Field)
	if !ok {
		return false
	}

	var result bool
	switch p.Logic {
	case LogicOr:
		result = false
		for _, target := range p.Targets {
			if ValueMatches(actual, target) {
				result = true
				break
			}
		}
	default:
		result = true
		for _, target := range p.Targets {
			if !ValueMatches(actual, target) {
				result = false
				break
			}
		}
	}

	if p.Negate {
		return !result
	}
	return result
}

// ValueMatches applies the value-matching rule for one target:
//
//   - A boolean target matches a boolean field, or a 0/1 integer field, by
//     truth value.
//   - List fields match if the target is a substring of any element.
//   - String fields containing a comma are split on commas; the target must
//     equal one trimmed part.
//   - Anything else matches if the target is a substring of the value's
//     string form.
//
// An empty target matches nothing. Comparison is case-insensitive
// throughout.
func ValueMatches(actual, target record.Value) bool {
	if b, ok := target.(record.Bool); ok {
		if truth, ok := truthValue(actual); ok {
			return truth == bool(b)
		}
	}

	needle := fold(record.Text(target))
	if needle == "" {
		return false
	}

	switch val := actual.(type) {
	case record.List:
		for _, elem := range val {
			if strings.Contains(fold(record.Text(elem)), needle) {
				return true
			}
		}
		return false

	case record.String:
		s := string(val)
		if strings.Contains(s, ",") {
			for _, part := range strings.Split(s, ",") {
				if fold(strings.TrimSpace(part)) == needle {
					return true
				}
			}
			return false
		}
		return strings.Contains(fold(s), needle)

	default:
		return strings.Contains(fold(record.Text(actual)), needle)
	}
}

// truthValue reads a boolean out of a boolean field or a 0/1 integer field.
func truthValue(v record.Value) (bool, bool) {
	switch val := v.(type) {
	case record.Bool:
		return bool(val), true
	case record.Int:
		switch val {
		case 0:
			return false, true
		case 1:
			return true, true
		}
	}
	return false, false
}

func fold(s string) string {
	return cases.Fold().String(s)
}
