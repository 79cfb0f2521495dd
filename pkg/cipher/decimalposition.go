package cipher

import (
	"fmt"

	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
)

// decimalCarryPercent is the chance that one axis of a frame carries a bit.
const decimalCarryPercent = 60

// Digit pools for the DecimalPosition strategy. A digit found in neither bit
// pool carries nothing.
var (
	bit0Pool      = []int{1, 4, 7}
	bit1Pool      = []int{2, 5, 8}
	noMessagePool = []int{0, 3, 6, 9}
)

func checkDigitPosition(position int) error {
	if position < 0 || position > MaxDigitPosition {
		return &floatbits.ErrInvalidArgument{
			Op:     "DigitPosition",
			Reason: fmt.Sprintf("position %d outside 0..%d", position, MaxDigitPosition),
		}
	}
	return nil
}

// encodeDigitHeader writes the payload bit length into the X mantissa and the
// digit position into the Y mantissa.
func encodeDigitHeader(e *Encoder, p *Position, bits *bitstream.BitStream) error {
	if err := checkDigitPosition(e.opts.DigitPosition); err != nil {
		return err
	}
	if err := writeMantissaValue(&p.X, bits.Len()); err != nil {
		return err
	}
	return writeMantissaValue(&p.Y, e.opts.DigitPosition)
}

func decodeDigitHeader(d *Decoder, p Position) error {
	d.messageLength = readMantissaValue(p.X)
	d.digitPosition = readMantissaValue(p.Y)
	return checkDigitPosition(d.digitPosition)
}

// encodeDecimalPositionPayload is only reached for frames without pressed
// actions. Each axis independently decides whether it carries a bit.
func encodeDecimalPositionPayload(e *Encoder, p *Position, _ bool, bits *bitstream.BitStream) error {
	if !bits.AreBitsLeft(1) {
		return nil
	}
	carryX := e.opts.Rand.Intn(100) < decimalCarryPercent
	carryY := e.opts.Rand.Intn(100) < decimalCarryPercent
	if err := writePoolDigit(&p.X, e.opts.DigitPosition, carryX, bits); err != nil {
		return err
	}
	return writePoolDigit(&p.Y, e.opts.DigitPosition, carryY, bits)
}

func writePoolDigit(x *float32, position int, carry bool, bits *bitstream.BitStream) error {
	digit, err := floatbits.GetFractionDigit(*x, position)
	if err != nil {
		return err
	}
	pool := noMessagePool
	if carry {
		pool = bit0Pool
		if bits.GetBit() == '1' {
			pool = bit1Pool
		}
	}
	return floatbits.ReplaceFractionDigit(x, position, closestInPool(pool, digit))
}

// closestInPool returns the pool value nearest to digit, preferring the
// earlier entry on ties.
func closestInPool(pool []int, digit int) int {
	closest := pool[0]
	best := abs(closest - digit)
	for _, v := range pool[1:] {
		if distance := abs(v - digit); distance < best {
			closest, best = v, distance
		}
	}
	return closest
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func inPool(pool []int, digit int) bool {
	for _, v := range pool {
		if v == digit {
			return true
		}
	}
	return false
}

func decodeDecimalPositionPayload(d *Decoder, frame Frame) error {
	for _, x := range []float32{frame.Position.X, frame.Position.Y} {
		digit, err := floatbits.GetFractionDigit(x, d.digitPosition)
		if err != nil {
			return err
		}
		switch {
		case inPool(bit1Pool, digit):
			d.appendBits("1")
		case inPool(bit0Pool, digit):
			d.appendBits("0")
		}
	}
	return nil
}
