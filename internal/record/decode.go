package record

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Decode parses a JSON object into a Record.
// Numbers without a fraction or exponent become Int; everything else
// numeric becomes Float. null becomes Null.
func Decode(data []byte) (Record, error) {
	v, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(Record)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}
	return rec, nil
}

// DecodeList parses a JSON array of objects into Records, preserving order.
func DecodeList(data []byte) ([]Record, error) {
	v, err := decodeValue(data)
	if err != nil {
		return nil, err
	}
	list, ok := v.(List)
	if !ok {
		return nil, fmt.Errorf("expected JSON array, got %T", v)
	}
	records := make([]Record, 0, len(list))
	for i, elem := range list {
		rec, ok := elem.(Record)
		if !ok {
			return nil, fmt.Errorf("list[%d]: expected JSON object, got %T", i, elem)
		}
		records = append(records, rec)
	}
	return records, nil
}

// UnmarshalJSON implements json.Unmarshaler for Record.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := Decode(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func decodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// FromAny converts a decoded JSON value (as produced by a decoder with
// UseNumber enabled, or a plain Go literal) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid number %s: %w", s, err)
			}
			return Float(f), nil
		}
		n, err := val.Int64()
		if err != nil {
			// Out of int64 range; keep it as a float rather than fail the row.
			f, ferr := val.Float64()
			if ferr != nil {
				return nil, fmt.Errorf("invalid number %s: %w", s, err)
			}
			return Float(f), nil
		}
		return Int(n), nil
	case []any:
		list := make(List, len(val))
		for i, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			list[i] = conv
		}
		return list, nil
	case []string:
		list := make(List, len(val))
		for i, elem := range val {
			list[i] = String(elem)
		}
		return list, nil
	case map[string]any:
		rec := make(Record, len(val))
		for k, elem := range val {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			rec[k] = conv
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// MustFromMap builds a Record from Go literals. It panics on unsupported
// value types and is meant for tests and fixtures.
func MustFromMap(m map[string]any) Record {
	v, err := FromAny(m)
	if err != nil {
		panic(err)
	}
	return v.(Record)
}
