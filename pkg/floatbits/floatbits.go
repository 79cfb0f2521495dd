// Package floatbits reads and rewrites the bit layout of IEEE-754 single
// precision values: sign(1) + exponent(8) + mantissa(23).
//
// Bit strings are printed most significant bit first, so in a 23 character
// mantissa string the character at index 22-p holds mantissa bit position p.
// Position 0 is the least significant mantissa bit.
package floatbits

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

const (
	// FullBitsLength is the width of a complete float32 bit pattern.
	FullBitsLength = 32
	// MantissaLength is the width of the float32 mantissa.
	MantissaLength = 23
	// MantissaMask selects every mantissa bit of a float32 pattern.
	MantissaMask = 1<<MantissaLength - 1
)

// ErrInvalidArgument reports a malformed bit pattern, position or mask.
// It signals a broken caller, not a runtime condition.
type ErrInvalidArgument struct {
	Op     string
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("%s: invalid argument: %s", e.Op, e.Reason)
}

func IsInvalidArgument(err error) bool {
	var target *ErrInvalidArgument
	return errors.As(err, &target)
}

func invalid(op string, format string, args ...interface{}) error {
	return &ErrInvalidArgument{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// parseBits validates a bit string of the given length and returns its value.
func parseBits(op string, s string, length int) (uint32, error) {
	if len(s) != length {
		return 0, invalid(op, "expected %d bits, got %d", length, len(s))
	}
	var v uint32
	for i := 0; i < len(s); i++ {
		v <<= 1
		switch s[i] {
		case '0':
		case '1':
			v |= 1
		default:
			return 0, invalid(op, "unexpected character %q at index %d", s[i], i)
		}
	}
	return v, nil
}

func formatBits(v uint32, length int) string {
	return fmt.Sprintf("%0*b", length, v)
}

// GetFullBits returns the 32 bit pattern of x, most significant bit first.
func GetFullBits(x float32) string {
	return formatBits(math.Float32bits(x), FullBitsLength)
}

// ReplaceFullBits reinterprets bits as the new value of x. The pattern is
// written exactly, without rounding.
func ReplaceFullBits(x *float32, bits string) error {
	v, err := parseBits("ReplaceFullBits", bits, FullBitsLength)
	if err != nil {
		return err
	}
	*x = math.Float32frombits(v)
	return nil
}

// GetMantissaBits returns the 23 mantissa bits of x.
func GetMantissaBits(x float32) string {
	return formatBits(math.Float32bits(x)&MantissaMask, MantissaLength)
}

// ReplaceMantissaBits overwrites the mantissa of x, keeping sign and exponent.
func ReplaceMantissaBits(x *float32, mantissa string) error {
	v, err := parseBits("ReplaceMantissaBits", mantissa, MantissaLength)
	if err != nil {
		return err
	}
	pattern := math.Float32bits(*x)&^MantissaMask | v
	*x = math.Float32frombits(pattern)
	return nil
}

// GetLastMantissaBits returns the lowest n mantissa bits of x, zero padded to n.
func GetLastMantissaBits(x float32, n int) (string, error) {
	if n < 1 || n > MantissaLength {
		return "", invalid("GetLastMantissaBits", "bit count %d outside 1..%d", n, MantissaLength)
	}
	low := math.Float32bits(x) & (1<<uint(n) - 1)
	return formatBits(low, n), nil
}

func checkPosition(op string, position int) error {
	if position < 0 || position >= MantissaLength {
		return invalid(op, "position %d outside 0..%d", position, MantissaLength-1)
	}
	return nil
}

// GetNthMantissaBit returns the bit at the given mantissa position.
func GetNthMantissaBit(mantissa string, position int) (byte, error) {
	const op = "GetNthMantissaBit"
	if _, err := parseBits(op, mantissa, MantissaLength); err != nil {
		return 0, err
	}
	if err := checkPosition(op, position); err != nil {
		return 0, err
	}
	return mantissa[MantissaLength-1-position], nil
}

// SetNthMantissaBit returns mantissa with the bit at position replaced.
func SetNthMantissaBit(mantissa string, position int, bit byte) (string, error) {
	const op = "SetNthMantissaBit"
	if _, err := parseBits(op, mantissa, MantissaLength); err != nil {
		return "", err
	}
	if err := checkPosition(op, position); err != nil {
		return "", err
	}
	if bit != '0' && bit != '1' {
		return "", invalid(op, "bit must be '0' or '1', got %q", bit)
	}
	out := []byte(mantissa)
	out[MantissaLength-1-position] = bit
	return string(out), nil
}

func checkMask(op string, mask int) error {
	if mask < 0 || mask > MantissaMask {
		return invalid(op, "mask %#x does not fit in %d mantissa bits", mask, MantissaLength)
	}
	return nil
}

// SetMantissaBitsWithMask writes message into the mantissa positions selected
// by mask. Positions are filled in ascending order while message is consumed
// from its last character towards its first, so the lowest selected position
// receives the final message bit.
func SetMantissaBitsWithMask(mantissa string, mask int, message string) (string, error) {
	const op = "SetMantissaBitsWithMask"
	if _, err := parseBits(op, mantissa, MantissaLength); err != nil {
		return "", err
	}
	if err := checkMask(op, mask); err != nil {
		return "", err
	}
	if count := bits.OnesCount32(uint32(mask)); len(message) != count {
		return "", invalid(op, "message has %d bits but mask selects %d", len(message), count)
	}
	if _, err := parseBits(op, message, len(message)); err != nil {
		return "", err
	}

	out := []byte(mantissa)
	next := len(message) - 1
	for position := 0; position < MantissaLength; position++ {
		if mask&(1<<uint(position)) == 0 {
			continue
		}
		out[MantissaLength-1-position] = message[next]
		next--
	}
	return string(out), nil
}

// GetMantissaBitsWithMask is the inverse of SetMantissaBitsWithMask.
func GetMantissaBitsWithMask(mantissa string, mask int) (string, error) {
	const op = "GetMantissaBitsWithMask"
	if _, err := parseBits(op, mantissa, MantissaLength); err != nil {
		return "", err
	}
	if err := checkMask(op, mask); err != nil {
		return "", err
	}

	count := bits.OnesCount32(uint32(mask))
	out := make([]byte, count)
	next := count - 1
	for position := 0; position < MantissaLength; position++ {
		if mask&(1<<uint(position)) == 0 {
			continue
		}
		// prepend: later (higher) positions land closer to the front
		out[next] = mantissa[MantissaLength-1-position]
		next--
	}
	return string(out), nil
}
