package exifmeta

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrConversion is returned when GPS components cannot be turned into decimal degrees.
var ErrConversion = errors.New("coordinate conversion failed")

// Component is one degree, minute or second value of a GPS coordinate.
// Readers deliver either plain numbers or rational pairs.
type Component interface {
	Value() float64
}

// Plain is an already-decoded numeric component.
type Plain float64

// Value returns the component as a float.
func (p Plain) Value() float64 { return float64(p) }

// Rational is a numerator/denominator pair as stored in EXIF RATIONAL fields.
type Rational struct {
	Num int64
	Den int64
}

// Value returns Num/Den, or 0 when the denominator is zero.
func (r Rational) Value() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// ToDecimal converts degree, minute and second components to decimal degrees:
// d + m/60 + s/3600. Extra components are ignored.
func ToDecimal(parts []Component) (float64, error) {
	if len(parts) < 3 {
		return 0, fmt.Errorf("%w: expected 3 components, got %d", ErrConversion, len(parts))
	}

	for i, p := range parts[:3] {
		if p == nil {
			return 0, fmt.Errorf("%w: component %d is missing", ErrConversion, i)
		}
	}

	deg := parts[0].Value() + parts[1].Value()/60.0 + parts[2].Value()/3600.0
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0, fmt.Errorf("%w: non-finite result", ErrConversion)
	}

	return deg, nil
}

// hemisphere normalizes a GPS reference value ("N", "South", "W\x00") to its
// first letter, upper-cased. Returns 0 for an empty reference.
func hemisphere(ref string) byte {
	ref = strings.TrimSpace(strings.Trim(ref, "\x00"))
	if ref == "" {
		return 0
	}
	c := ref[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}

// applyRef returns the magnitude of deg signed by the hemisphere reference.
// South and West are negative.
func applyRef(deg float64, ref string) float64 {
	deg = math.Abs(deg)
	switch hemisphere(ref) {
	case 'S', 'W':
		return -deg
	default:
		return deg
	}
}

// FormatLocation renders a coordinate pair the way it is stored and used as a tag name.
func FormatLocation(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

// resolveLocation converts both coordinates and formats them.
func resolveLocation(lat []Component, latRef string, lon []Component, lonRef string) (string, error) {
	latDeg, err := ToDecimal(lat)
	if err != nil {
		return "", fmt.Errorf("latitude: %w", err)
	}
	lonDeg, err := ToDecimal(lon)
	if err != nil {
		return "", fmt.Errorf("longitude: %w", err)
	}
	return FormatLocation(applyRef(latDeg, latRef), applyRef(lonDeg, lonRef)), nil
}
