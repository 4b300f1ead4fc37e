package property

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatInt stringifies an integral value. Floats are accepted when they
// carry no fractional part because JSON decoders produce float64 for every
// number.
func formatInt(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return formatInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > 1<<53 {
			return "", false
		}

		return strconv.FormatInt(int64(n), 10), true
	default:
		return "", false
	}
}

// hostInt reports whether the integer literal s fits the C int the host
// stores IntVectorProperty values in.
func hostInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 32)
	return err == nil
}

// formatDouble stringifies a numeric value. Integers keep their integer
// form; floats use the shortest representation that always shows a
// fractional part or an exponent. Numeric strings are kept verbatim.
func formatDouble(v any) (string, float64, bool) {
	switch n := v.(type) {
	case float64:
		return FormatFloat(n), n, true
	case float32:
		s := formatFloat(float64(n), 32)
		f, _ := strconv.ParseFloat(s, 64)

		return s, f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return "", 0, false
		}

		return strings.TrimSpace(n), f, true
	default:
		s, ok := formatInt(v)
		if !ok {
			return "", 0, false
		}

		f, _ := strconv.ParseFloat(s, 64)

		return s, f, true
	}
}

// FormatFloat renders f the way Python's str() does:
// shortest round-trip digits, scientific notation below 1e-4 and from 1e16,
// and a trailing ".0" on integral values.
func FormatFloat(f float64) string {
	return formatFloat(f, 64)
}

// formatFloat formats f with the shortest digits that round-trip at the
// given bit size, so float32 inputs are not widened to float64 digits.
func formatFloat(f float64, bitSize int) string {
	if bitSize == 32 && !math.IsNaN(f) && !math.IsInf(f, 0) {
		f, _ = strconv.ParseFloat(strconv.FormatFloat(f, 'g', -1, 32), 64)
	}

	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// formatBool maps a boolean-ish value onto 0 or 1.
func formatBool(v any) (string, bool) {
	if b, ok := v.(bool); ok {
		if b {
			return "1", true
		}

		return "0", true
	}

	s, ok := formatInt(v)
	if !ok || (s != "0" && s != "1") {
		return "", false
	}

	return s, true
}

func describe(v any) string {
	return fmt.Sprintf("%v (%T)", v, v)
}
