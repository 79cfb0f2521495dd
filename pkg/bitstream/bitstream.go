// Package bitstream turns a plaintext into a finite, forward-only sequence of
// bits that an encoder consumes one frame at a time.
package bitstream

import (
	"strings"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/log"
)

// LetterWidth is the code width of a single letter read by GetLetter.
const LetterWidth = 7

// BitStream reads the bits of a plaintext in order. Reads past the end
// saturate with '0' instead of failing so that an encoder can always produce
// a frame.
type BitStream struct {
	bits      string
	width     bitcodec.CharWidth
	cursor    int
	exhausted bool
}

// New creates a BitStream from text using the given character width.
// An invalid width falls back to the default.
func New(text string, width bitcodec.CharWidth) *BitStream {
	if !width.Valid() {
		width = bitcodec.DefaultCharWidth
	}
	return &BitStream{
		bits:  bitcodec.EncodeText(text, width),
		width: width,
	}
}

// CharWidth returns the character width the stream was built with.
func (b *BitStream) CharWidth() bitcodec.CharWidth {
	return b.width
}

// Len returns the total number of bits.
func (b *BitStream) Len() int {
	return len(b.bits)
}

// LetterCount returns the number of characters in the stream.
func (b *BitStream) LetterCount() int {
	return len(b.bits) / int(b.width)
}

// Cursor returns the number of bits consumed so far.
func (b *BitStream) Cursor() int {
	return b.cursor
}

func (b *BitStream) remaining() int {
	return len(b.bits) - b.cursor
}

// AreBitsLeft reports whether at least n more bits can be read.
func (b *BitStream) AreBitsLeft(n int) bool {
	return b.cursor+n <= len(b.bits)
}

func (b *BitStream) noteExhausted() {
	if !b.exhausted {
		b.exhausted = true
		log.Debug("Whole plaintext was read; supplying zero bits from now on")
	}
}

// GetBit returns the next bit, or '0' once the stream is exhausted.
func (b *BitStream) GetBit() byte {
	if b.cursor >= len(b.bits) {
		b.noteExhausted()
		return '0'
	}
	bit := b.bits[b.cursor]
	b.cursor++
	return bit
}

// GetBits reads n bits. When fewer remain it consumes what is left and pads
// the result with '0' up to n.
func (b *BitStream) GetBits(n int) string {
	if n <= 0 {
		return ""
	}
	toRead := n
	if !b.AreBitsLeft(n) {
		b.noteExhausted()
		toRead = b.remaining()
	}
	read := b.bits[b.cursor : b.cursor+toRead]
	b.cursor += toRead
	if toRead == n {
		return read
	}
	return read + strings.Repeat("0", n-toRead)
}

// Rest reads every remaining bit.
func (b *BitStream) Rest() string {
	return b.GetBits(b.remaining())
}

// GetLetter reads one character and returns its 7 bit letter code. On an
// 8 bit stream the leading bit of the character is consumed and dropped.
func (b *BitStream) GetLetter() byte {
	if b.width > LetterWidth {
		b.GetBits(int(b.width) - LetterWidth)
	}
	return byte(bitcodec.ParseBitString(b.GetBits(LetterWidth)))
}

// Reset rewinds the stream to its first bit.
func (b *BitStream) Reset() {
	b.cursor = 0
	b.exhausted = false
}
