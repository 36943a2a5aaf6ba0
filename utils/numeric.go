package utils

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseFloat converts a string to a float64, returning 0 if there's an error
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return value, nil
}

// ParseAmount coerces an amount field of unknown type to a float64.
// Upstream data stores amounts as numbers or strings interchangeably, so
// every caller goes through this one function; anything unparseable is 0.
func ParseAmount(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		// tolerate "1,250.00" style values from spreadsheet imports
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
