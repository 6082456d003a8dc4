package utils

import "strconv"

// CoerceBool normalizes the loosely-typed approval values clients send:
// true/false, "true"/"false", 1/0 and "1"/"0" map to the strict bool, any
// other value falls back to general truthiness (non-empty string, non-zero
// number).
func CoerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
		return v != ""
	case float64:
		// encoding/json decodes all numbers into float64
		return v != 0
	case int:
		return v != 0
	case nil:
		return false
	default:
		return true
	}
}
