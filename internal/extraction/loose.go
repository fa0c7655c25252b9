package extraction

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// looseNumber accepts a JSON number, a numeric string ("$1,234.50") or null.
type looseNumber struct {
	Value decimal.Decimal
	Valid bool
}

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = looseNumber{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	text := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		text = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	n.Value, n.Valid = d, true
	return nil
}

// Float returns the value as a pointer, nil when absent.
func (n looseNumber) Float() *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Value.InexactFloat64()
	return &f
}

// looseString accepts a JSON string, number, bool or null.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(strings.TrimSpace(v))
	case b[0] == '{' || b[0] == '[':
		*s = ""
	default:
		*s = looseString(b)
	}
	return nil
}
