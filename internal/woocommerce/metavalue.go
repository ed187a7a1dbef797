package woocommerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseMultiValue extracts the values held in a product metadata field. The
// platform stores these as a JSON array, as a JSON string that itself holds
// a JSON array, as a legacy serialized array (a:2:{i:0;s:9:"47-348-01";...}),
// or as a plain delimited string.
func ParseMultiValue(raw json.RawMessage) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var list []any
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		return normalizeValues(stringify(list))
	}

	var single any
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil
	}

	switch v := single.(type) {
	case string:
		return parseTextValue(v)
	case float64:
		return normalizeValues([]string{strconv.FormatFloat(v, 'f', -1, 64)})
	default:
		return nil
	}
}

func parseTextValue(text string) []string {
	s := strings.TrimSpace(text)
	switch {
	case s == "":
		return nil
	case strings.HasPrefix(s, "["):
		var list []any
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return normalizeValues(stringify(list))
		}
		return nil
	case strings.HasPrefix(s, "a:"):
		values, err := parseSerializedArray(s)
		if err != nil {
			return nil
		}
		return normalizeValues(values)
	default:
		return normalizeValues(strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		}))
	}
}

func stringify(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}

func normalizeValues(values []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// serializedReader walks a serialized array one token at a time.
type serializedReader struct {
	s   string
	pos int
}

// parseSerializedArray returns the scalar values of a flat serialized array,
// in order. Nested arrays are rejected.
func parseSerializedArray(s string) ([]string, error) {
	r := &serializedReader{s: s}
	if err := r.expect("a:"); err != nil {
		return nil, err
	}
	count, err := r.readInt(':')
	if err != nil {
		return nil, err
	}
	// Every entry needs at least "i:0;N;" so a count above len(s)/6 cannot be honest.
	if count < 0 || count > len(s)/6 {
		return nil, fmt.Errorf("array count %d out of range", count)
	}
	if err := r.expect("{"); err != nil {
		return nil, err
	}

	values := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if _, err := r.readScalar(); err != nil {
			return nil, fmt.Errorf("entry %d key: %w", i, err)
		}
		v, err := r.readScalar()
		if err != nil {
			return nil, fmt.Errorf("entry %d value: %w", i, err)
		}
		values = append(values, v)
	}
	if err := r.expect("}"); err != nil {
		return nil, err
	}
	return values, nil
}

func (r *serializedReader) expect(lit string) error {
	if !strings.HasPrefix(r.s[r.pos:], lit) {
		return fmt.Errorf("expected %q at offset %d", lit, r.pos)
	}
	r.pos += len(lit)
	return nil
}

func (r *serializedReader) readUntil(delim byte) (string, error) {
	idx := strings.IndexByte(r.s[r.pos:], delim)
	if idx < 0 {
		return "", fmt.Errorf("missing %q after offset %d", delim, r.pos)
	}
	out := r.s[r.pos : r.pos+idx]
	r.pos += idx + 1
	return out, nil
}

func (r *serializedReader) readInt(delim byte) (int, error) {
	raw, err := r.readUntil(delim)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return n, nil
}

func (r *serializedReader) readScalar() (string, error) {
	if r.pos+2 > len(r.s) {
		return "", fmt.Errorf("unexpected end at offset %d", r.pos)
	}
	kind := r.s[r.pos]
	r.pos += 2 // type letter and ':'
	switch kind {
	case 's':
		length, err := r.readInt(':')
		if err != nil {
			return "", err
		}
		if err := r.expect(`"`); err != nil {
			return "", err
		}
		if length < 0 || r.pos+length > len(r.s) {
			return "", fmt.Errorf("string length %d overruns input", length)
		}
		value := r.s[r.pos : r.pos+length]
		r.pos += length
		if err := r.expect(`";`); err != nil {
			return "", err
		}
		return value, nil
	case 'i', 'd', 'b':
		return r.readUntil(';')
	case 'N':
		r.pos-- // N; has no ':'
		return "", nil
	default:
		return "", fmt.Errorf("unsupported serialized type %q", kind)
	}
}
