package ipa

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrVersionCode is returned when CFBundleVersion cannot be turned into an integer.
var ErrVersionCode = errors.New("invalid bundle version")

var numericPrefix = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)

// Policy selects how CFBundleVersion is coerced to an integer.
type Policy string

const (
	// PolicyPrefix reads the leading number of a string, truncated toward
	// zero, and yields 0 when there is none: "42" is 42, "1.2.3" is 1,
	// "1e3" is 1000, "abc" is 0.
	PolicyPrefix Policy = "prefix"

	// PolicyStrict requires the whole string to be a base-10 integer.
	PolicyStrict Policy = "strict"
)

// String returns the string representation of the policy.
func (p Policy) String() string {
	return string(p)
}

// IsValid returns true if the policy is a known policy.
func (p Policy) IsValid() bool {
	switch p {
	case PolicyPrefix, PolicyStrict:
		return true
	default:
		return false
	}
}

// ParsePolicy converts a string to a Policy, returning PolicyPrefix as fallback.
func ParsePolicy(s string) Policy {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return PolicyPrefix
}

// Coerce converts a decoded plist value to an integer according to the policy.
func (p Policy) Coerce(v any) (int64, error) {
	switch n := v.(type) {
	case string:
		if p == PolicyStrict {
			return parseStrict(n)
		}
		return parsePrefix(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrVersionCode, n)
		}
		return int64(n), nil
	case float64:
		return p.coerceReal(n)
	case float32:
		return p.coerceReal(float64(n))
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrVersionCode, v)
	}
}

func (p Policy) coerceReal(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v out of range", ErrVersionCode, f)
	}
	if p == PolicyStrict && f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not integral", ErrVersionCode, f)
	}
	return int64(f), nil
}

func parseStrict(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrVersionCode, s)
	}
	return n, nil
}

// parsePrefix reads the leading numeric part of s, including a fraction and
// an exponent, and truncates it toward zero. Values past the int64 range
// saturate.
func parsePrefix(s string) int64 {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}

	if !strings.ContainsAny(m, ".eE") {
		n, err := strconv.ParseInt(m, 10, 64)
		if err == nil {
			return n
		}
		// only ErrRange is possible on a digit run
		if m[0] == '-' {
			return math.MinInt64
		}
		return math.MaxInt64
	}

	// ErrRange yields ±Inf, which saturates below
	f, _ := strconv.ParseFloat(m, 64)
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
