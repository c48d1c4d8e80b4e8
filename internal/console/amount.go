package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = errors.New("enter a valid amount")
)

// ParseAmount converts a major-unit amount such as "12.50" to cents. The
// result must be positive.
func ParseAmount(s string) (int64, error) {
	cents, err := toCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParsePrice converts a menu price to cents. Thousands separators are
// accepted and zero is a valid price.
func ParsePrice(s string) (int64, error) {
	cents, err := toCents(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, err
	}
	if cents < 0 {
		return 0, fmt.Errorf("%w: price cannot be negative", ErrInvalidAmount)
	}
	return cents, nil
}

// FormatCents renders cents as a major-unit amount with two decimals
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func toCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}
	cents := math.Round(f * 100)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if cents >= float64(math.MaxInt64) || cents < float64(math.MinInt64) {
		return 0, fmt.Errorf("%w: amount is too large", ErrInvalidAmount)
	}
	return int64(cents), nil
}
