package floatbits

import (
	"fmt"
	"math"
	"strconv"
)

// MaxFractionDigits bounds the decimal fraction width. A float32 cursor
// coordinate below 1024 keeps four decimals exactly; wider fractions are only
// stable for smaller magnitudes.
const MaxFractionDigits = 6

var pow10 = [MaxFractionDigits + 1]uint64{1, 10, 100, 1000, 10000, 100000, 1000000}

// splitDecimal scales |x| to a fixed point value with the given number of
// decimals, rounding half away from zero, and splits it into whole and
// fractional parts. Both the reading and the writing side share the rounded
// whole part so that a carry (12.99999 -> 13.0000) moves the value consistently.
func splitDecimal(op string, x float32, digits int) (bool, uint64, uint64, error) {
	if digits < 1 || digits > MaxFractionDigits {
		return false, 0, 0, invalid(op, "fraction width %d outside 1..%d", digits, MaxFractionDigits)
	}
	v := float64(x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false, 0, 0, invalid(op, "value %v has no decimal fraction", x)
	}
	negative := math.Signbit(v)
	scale := pow10[digits]
	scaled := math.Round(math.Abs(v) * float64(scale))
	if scaled >= 1<<53 {
		return false, 0, 0, invalid(op, "value %v too large for %d fraction digits", x, digits)
	}
	fixed := uint64(scaled)
	return negative, fixed / scale, fixed % scale, nil
}

// GetFraction returns the first digits decimals of x as a zero padded string.
func GetFraction(x float32, digits int) (string, error) {
	_, _, fraction, err := splitDecimal("GetFraction", x, digits)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, fraction), nil
}

// ReplaceFraction keeps the sign and whole part of x and replaces its decimal
// fraction with the given digits. The result is truncated to len(fraction)
// decimals.
func ReplaceFraction(x *float32, fraction string) error {
	const op = "ReplaceFraction"
	for i := 0; i < len(fraction); i++ {
		if fraction[i] < '0' || fraction[i] > '9' {
			return invalid(op, "unexpected character %q at index %d", fraction[i], i)
		}
	}
	negative, whole, _, err := splitDecimal(op, *x, len(fraction))
	if err != nil {
		return err
	}
	digits, err := strconv.ParseUint(fraction, 10, 64)
	if err != nil {
		return invalid(op, "failed to parse fraction %q: %v", fraction, err)
	}

	v := float64(whole) + float64(digits)/float64(pow10[len(fraction)])
	if negative {
		v = -v
	}
	*x = float32(v)
	return nil
}

// ReplaceFractionDigit replaces the decimal digit at position (0 = tenths),
// keeping the digits before it. Digits after position are dropped.
func ReplaceFractionDigit(x *float32, position int, digit int) error {
	const op = "ReplaceFractionDigit"
	if digit < 0 || digit > 9 {
		return invalid(op, "digit %d outside 0..9", digit)
	}
	fraction, err := GetFraction(*x, position+1)
	if err != nil {
		return err
	}
	out := []byte(fraction)
	out[position] = byte('0' + digit)
	return ReplaceFraction(x, string(out))
}

// GetFractionDigit returns the decimal digit at position (0 = tenths).
func GetFractionDigit(x float32, position int) (int, error) {
	fraction, err := GetFraction(x, position+1)
	if err != nil {
		return 0, err
	}
	return int(fraction[position] - '0'), nil
}
