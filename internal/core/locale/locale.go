// Package locale turns Russian-locale report text into machine numbers.
// Cleanup order matters and is fixed:
// 1 Unicode NFKD normalization (folds non-breaking spaces to plain spaces)
// 2 Strip spaces, currency and percent suffixes, carriage returns, tabs
// 3 Trim
// 4 Decimal comma to decimal point
// 5 Unicode minus U+2212 to ASCII hyphen-minus
// The cleanup is structure-free: panel and table extraction live with the
// upstream parsers, this package only knows strings and numbers
package locale

import (
	"strconv"
	"strings"

	perr "opstats/internal/platform/errors"

	"golang.org/x/text/unicode/norm"
)

var stripped = []string{" ", " ", "₽", "%", "\r", "\t"}

// Clean applies the documented cleanup pipeline to s
func Clean(s string) string {
	s = norm.NFKD.String(s)
	for _, cut := range stripped {
		s = strings.ReplaceAll(s, cut, "")
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "−", "-")
	return s
}

// Float cleans s and parses it as a decimal number
func Float(s string) (float64, error) {
	c := Clean(s)
	v, err := strconv.ParseFloat(c, 64)
	if err != nil {
		return 0, perr.Parsef("not a number: %q", s)
	}
	return v, nil
}

// Int cleans s and parses it as an integer
func Int(s string) (int, error) {
	c := Clean(s)
	v, err := strconv.Atoi(c)
	if err != nil {
		return 0, perr.Parsef("not an integer: %q", s)
	}
	return v, nil
}

// emptyTokens are the upstream's canonical "no value" markers. They map to
// an absent value, never to zero
var emptyTokens = map[string]struct{}{
	"": {}, "-": {}, "—": {},
}

// OptionalFloat parses s like Float but reports ok=false for the canonical
// empty tokens instead of failing
func OptionalFloat(s string) (v float64, ok bool, err error) {
	if _, empty := emptyTokens[Clean(s)]; empty {
		return 0, false, nil
	}
	v, err = Float(s)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// SplitPair splits s on sep into exactly two parts
func SplitPair(s, sep string) (string, string, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", perr.Parsef("expected two values around %q, got %q", sep, s)
	}
	return parts[0], parts[1], nil
}

// MinSec converts a "MM:SS" value into total seconds
func MinSec(s string) (int, error) {
	m, sec, err := SplitPair(Clean(s), ":")
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, perr.Parsef("bad minutes in %q", s)
	}
	seconds, err := strconv.Atoi(sec)
	if err != nil {
		return 0, perr.Parsef("bad seconds in %q", s)
	}
	return minutes*60 + seconds, nil
}
