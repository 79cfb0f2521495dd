package cipher

import (
	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
)

// Letter indexes cover printable ASCII; indexes from firstFillerIndex upwards
// are noise.
const (
	firstPrintable   = 32
	lastPrintable    = 126
	firstFillerIndex = lastPrintable - firstPrintable + 1
	fillerIndexCount = 5
	substituteLetter = '?'
)

func letterIndex(letter byte) int {
	if letter < firstPrintable || letter > lastPrintable {
		letter = substituteLetter
	}
	return int(letter) - firstPrintable
}

// encodeLetterMappingPayload writes a two digit letter index, tens on X and
// units on Y, at the configured decimal position.
func encodeLetterMappingPayload(e *Encoder, p *Position, pressed bool, bits *bitstream.BitStream) error {
	if !bits.AreBitsLeft(1) {
		return nil
	}
	var index int
	if !pressed && e.opts.Rand.Intn(2) != 0 {
		index = letterIndex(bits.GetLetter())
	} else {
		index = firstFillerIndex + e.opts.Rand.Intn(fillerIndexCount)
	}
	if err := floatbits.ReplaceFractionDigit(&p.X, e.opts.DigitPosition, index/10); err != nil {
		return err
	}
	return floatbits.ReplaceFractionDigit(&p.Y, e.opts.DigitPosition, index%10)
}

func decodeLetterMappingPayload(d *Decoder, frame Frame) error {
	tens, err := floatbits.GetFractionDigit(frame.Position.X, d.digitPosition)
	if err != nil {
		return err
	}
	units, err := floatbits.GetFractionDigit(frame.Position.Y, d.digitPosition)
	if err != nil {
		return err
	}
	index := tens*10 + units
	if index >= firstFillerIndex {
		return nil
	}
	d.appendBits(bitcodec.FormatBits(index+firstPrintable, int(d.opts.CharWidth)))
	return nil
}
