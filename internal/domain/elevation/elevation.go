// Package elevation renders and parses level elevations expressed in decimal feet.
package elevation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit conversion constants.
const (
	inchesPerFoot   = 12
	eighthsPerInch  = 8
	feetInchesShort = "%d'-%d\""
	feetInchesLong  = "%d'-%d %d/8\""
)

// Sentinel errors returned by Parse.
var (
	ErrInvalidElevation = errors.New("invalid elevation")
	// ErrNotFinite additionally marks NaN, infinities and overflowing values.
	ErrNotFinite = errors.New("elevation is not finite")
)

// Format renders feet as feet, whole inches and eighths of an inch, e.g.
// 10.5 -> 10'-6" and 10.520833 -> 10'-6 2/8".
//
// Feet and inches are truncated toward zero on the magnitude, eighths are
// rounded half away from zero, so -x always renders as "-" + Format(x).
// A rounded eighth of 8/8 carries into the inches, and 12" into the feet.
func Format(feet float64) string {
	if math.IsNaN(feet) || math.IsInf(feet, 0) {
		return strconv.FormatFloat(feet, 'f', -1, 64)
	}

	magnitude := math.Abs(feet)
	whole := math.Trunc(magnitude)
	inches := (magnitude - whole) * inchesPerFoot
	wholeInches := math.Trunc(inches)
	eighths := math.Round((inches - wholeInches) * eighthsPerInch)

	ft, in, e := int64(whole), int64(wholeInches), int64(eighths)
	if e == eighthsPerInch {
		e = 0
		in++
	}
	if in == inchesPerFoot {
		in = 0
		ft++
	}

	var out string
	if e == 0 {
		out = fmt.Sprintf(feetInchesShort, ft, in)
	} else {
		out = fmt.Sprintf(feetInchesLong, ft, in, e)
	}

	if feet < 0 && (ft != 0 || in != 0 || e != 0) {
		return "-" + out
	}
	return out
}

// Parse reads a decimal-feet value as typed into an adjustment box.
// Surrounding whitespace and a leading "+" are accepted.
func Parse(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidElevation)
	}
	v, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) || (err == nil && !IsFinite(v)) {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidElevation, text, ErrNotFinite)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidElevation, text)
	}
	return v, nil
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
