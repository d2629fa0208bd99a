// Package coerce turns loosely typed spreadsheet values into strict Go types.
//
// Every function here is total: bad input yields the fallback, never an error.
// No other package should inspect raw wire values directly.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Boolean reports true only for the native bool true or the exact string "TRUE".
// "true", "1", 1, "False", nil and "" are all false.
func Boolean(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "TRUE"
	}
	return false
}

// Number parses v as a float. nil, "", NaN, ±Inf and anything unparsable
// return fallback.
func Number(v any, fallback float64) float64 {
	f, ok := number(v)
	if !ok {
		return fallback
	}
	return f
}

// ParseNumber is Number without a fallback: ok is false when v holds no usable number.
func ParseNumber(v any) (float64, bool) {
	return number(v)
}

// Integer is Number truncated toward zero. With bounds (min[, max]) the result
// is clamped into range.
func Integer(v any, fallback int, bounds ...int) int {
	f, ok := number(v)
	if !ok {
		return fallback
	}
	f = math.Trunc(f)

	if len(bounds) > 0 && f < float64(bounds[0]) {
		return bounds[0]
	}
	if len(bounds) > 1 && f > float64(bounds[1]) {
		return bounds[1]
	}
	if math.Abs(f) > maxExactInt {
		return fallback
	}
	return int(f)
}

// largest float64 that still holds every integer exactly
const maxExactInt = 1 << 53

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int8:
		f = float64(t)
	case int16:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint8:
		f = float64(t)
	case uint16:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String renders a wire value as text. nil is "", bools use the sheet's
// "TRUE"/"FALSE" spelling, numbers use the shortest exact decimal form.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CAD": "$",
	"AUD": "$",
	"INR": "₹",
	"CNY": "¥",
	"JPY": "¥",
}

// CurrencySymbol maps a currency code to its symbol. Unknown or empty codes
// get "$".
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[code]; ok {
		return s
	}
	return "$"
}
