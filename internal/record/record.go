package record

import (
	"slices"
	"strings"
)

// Lookup resolves field to the record's actual key and returns its value.
//
// An exact key match wins; otherwise keys are compared case-insensitively
// and the first match in sorted key order is returned, so the result is
// stable when a record carries keys differing only by case.
func (r Record) Lookup(field string) (key string, v Value, ok bool) {
	if v, ok := r[field]; ok {
		return field, v, true
	}
	for _, k := range r.Keys() {
		if strings.EqualFold(k, field) {
			return k, r[k], true
		}
	}
	return "", nil, false
}

// ResolveKey returns the record's actual key for field, compared
// case-insensitively. Returns "" and false if the record has no such key.
func (r Record) ResolveKey(field string) (string, bool) {
	key, _, ok := r.Lookup(field)
	return key, ok
}

// Get returns the value stored under field (case-insensitive), or Null.
func (r Record) Get(field string) Value {
	_, v, ok := r.Lookup(field)
	if !ok || v == nil {
		return Null{}
	}
	return v
}

// Has reports whether the record carries field (case-insensitive).
func (r Record) Has(field string) bool {
	_, _, ok := r.Lookup(field)
	return ok
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Link returns the nested record stored under field, if any.
func (r Record) Link(field string) (Record, bool) {
	nested, ok := r.Get(field).(Record)
	return nested, ok
}
