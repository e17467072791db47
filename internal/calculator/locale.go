package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotANumber is returned when a locale-formatted field cannot be read as
// a finite number.
var ErrNotANumber = errors.New("not a number")

// ParseDecimal reads a pt-BR formatted decimal ("12,5", "-3,07") into a
// float64. On failure it returns NaN together with an error wrapping
// ErrNotANumber; it never panics.
func ParseDecimal(s string) (float64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimSuffix(t, "%")
	if t == "" {
		return math.NaN(), fmt.Errorf("parse %q: %w", s, ErrNotANumber)
	}
	t = strings.Replace(t, ",", ".", 1)
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), fmt.Errorf("parse %q: %w", s, ErrNotANumber)
	}
	return v, nil
}

// ParseThousands reads a value that also uses "." as a thousands separator
// ("2.500.000,00").
func ParseThousands(s string) (float64, error) {
	return ParseDecimal(strings.ReplaceAll(s, ".", ""))
}
