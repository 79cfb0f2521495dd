// Package bitcodec converts between '0'/'1' bit strings, integers and text.
package bitcodec

import (
	"fmt"
	"math/bits"
	"strings"
)

// CharWidth is the number of bits used for one character code.
type CharWidth int

const (
	// CharWidth7 packs ASCII into 7 bit codes.
	CharWidth7 CharWidth = 7
	// CharWidth8 packs every character into one byte. This is the default.
	CharWidth8 CharWidth = 8

	DefaultCharWidth = CharWidth8
)

func (w CharWidth) Valid() bool {
	return w == CharWidth7 || w == CharWidth8
}

// ParseCharWidth validates a configured character width.
func ParseCharWidth(width int) (CharWidth, error) {
	w := CharWidth(width)
	if !w.Valid() {
		return 0, fmt.Errorf("unsupported character width: %d", width)
	}
	return w, nil
}

// ParseBitString parses an MSB first bit string without sign extension.
// Any character other than '1' counts as a zero bit.
func ParseBitString(s string) int {
	result := 0
	for i := 0; i < len(s); i++ {
		result <<= 1
		if s[i] == '1' {
			result |= 1
		}
	}
	return result
}

// FormatBits formats v as an MSB first bit string left padded to width.
// Values wider than width are not truncated.
func FormatBits(v int, width int) string {
	return fmt.Sprintf("%0*b", width, v)
}

// PopCount returns the number of set bits in mask.
func PopCount(mask int) int {
	return bits.OnesCount(uint(mask))
}

// EncodeText expands every byte of text into a fixed width code.
// With a 7 bit width the high bit of each byte is dropped.
func EncodeText(text string, width CharWidth) string {
	var sb strings.Builder
	sb.Grow(len(text) * int(width))
	limit := 1<<uint(width) - 1
	for i := 0; i < len(text); i++ {
		sb.WriteString(FormatBits(int(text[i])&limit, int(width)))
	}
	return sb.String()
}

// DecodeText groups s into width sized chunks and converts each to one
// character. A trailing chunk shorter than width is dropped.
func DecodeText(s string, width CharWidth) string {
	w := int(width)
	out := make([]byte, 0, len(s)/w)
	for i := 0; i+w <= len(s); i += w {
		out = append(out, byte(ParseBitString(s[i:i+w])))
	}
	return string(out)
}
