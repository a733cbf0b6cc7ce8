package settings

import (
	"strconv"
	"time"
)

// Stock converters for Get and GetList. Each is a Value[T]; callers can
// pass their own instead.

// String is the identity converter: the raw stored value, unmodified.
func String(s string) (string, error) {
	return s, nil
}

func Int(s string) (int, error) {
	return strconv.Atoi(s)
}

func Int64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func Uint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func Float64(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Bool accepts what strconv.ParseBool accepts: 1, t, true, 0, f, false
// and their case variants.
func Bool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

// Duration parses values like "500ms" or "2h45m".
func Duration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
