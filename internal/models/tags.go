package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is stored as a JSON array. Comma separated values written by older
// clients are split on read.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	b, err := json.Marshal(t.Normalize())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(value interface{}) error {
	if t == nil {
		return fmt.Errorf("models.Tags: Scan on nil pointer")
	}

	var raw string
	switch v := value.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("models.Tags: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*t = Tags{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*t = Tags(arr).Normalize()
		return nil
	}
	*t = Tags(strings.Split(raw, ",")).Normalize()
	return nil
}

// Normalize trims entries and drops blanks and duplicates, keeping order.
func (t Tags) Normalize() Tags {
	out := make(Tags, 0, len(t))
	seen := make(map[string]struct{}, len(t))
	for _, tag := range t {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
