package cipher

import (
	"math/rand"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
)

const (
	// DefaultMask embeds one byte per carrying frame.
	DefaultMask = 0xFF
	// DefaultDigitPosition is the hundredths digit.
	DefaultDigitPosition = 1
	// NetworkTestCounterDigits is the fixed width of the frame counter.
	NetworkTestCounterDigits = 4
	// MaxDigitPosition is the deepest decimal digit the digit strategies may
	// use. Playfield coordinates keep only four reliable float32 decimals.
	MaxDigitPosition = 3
)

// Rand is the source of encoder noise. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type EncoderOptions struct {
	// Mask selects the Y mantissa bits used by the mask strategies.
	Mask int
	// DigitPosition is the decimal digit (0 = tenths) used by the digit strategies.
	DigitPosition int
	// Bounds is the visible area used by the good frame filter.
	Bounds Bounds
	// Rand drives the carry/no-carry choices. Defaults to a time seeded source.
	Rand Rand
}

// DefaultEncoderOptions returns options with a time seeded random source.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		Mask:          DefaultMask,
		DigitPosition: DefaultDigitPosition,
		Bounds:        DefaultBounds(),
	}
}

func (o EncoderOptions) withDefaults() EncoderOptions {
	if o.Bounds == (Bounds{}) {
		o.Bounds = DefaultBounds()
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}

type DecoderOptions struct {
	// CharWidth must match the width of the encoding BitStream.
	CharWidth bitcodec.CharWidth
	// Bounds must match the encoder's bounds for strategies that filter frames.
	Bounds Bounds
}

func DefaultDecoderOptions() DecoderOptions {
	return DecoderOptions{
		CharWidth: bitcodec.DefaultCharWidth,
		Bounds:    DefaultBounds(),
	}
}

func (o DecoderOptions) withDefaults() DecoderOptions {
	if !o.CharWidth.Valid() {
		o.CharWidth = bitcodec.DefaultCharWidth
	}
	if o.Bounds == (Bounds{}) {
		o.Bounds = DefaultBounds()
	}
	return o
}
