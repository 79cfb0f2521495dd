package cipher

import (
	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
)

const (
	// fractionsLengthMask selects the low 15 X mantissa bits of the
	// Fractions header.
	fractionsLengthMask = 0x7FFF

	halfFraction = "5"
	zeroFraction = "0"
)

func encodeFractionsHeader(_ *Encoder, p *Position, bits *bitstream.BitStream) error {
	if bits.Len() > fractionsLengthMask {
		return &floatbits.ErrInvalidArgument{Op: "Fractions", Reason: "message does not fit in a 15 bit length"}
	}
	x, err := floatbits.SetMantissaBitsWithMask(
		floatbits.GetMantissaBits(p.X),
		fractionsLengthMask,
		bitcodec.FormatBits(bits.Len(), bitcodec.PopCount(fractionsLengthMask)),
	)
	if err != nil {
		return err
	}
	return floatbits.ReplaceMantissaBits(&p.X, x)
}

func decodeFractionsHeader(d *Decoder, p Position) error {
	length, err := floatbits.GetMantissaBitsWithMask(floatbits.GetMantissaBits(p.X), fractionsLengthMask)
	if err != nil {
		return err
	}
	d.messageLength = bitcodec.ParseBitString(length)
	return nil
}

// encodeFractionsPayload only carries data if both possible rewrites of the
// frame stay inside the bounds. Otherwise the frame is emitted with a zero
// tenths digit, which the decoder's frame filter rejects as well.
func encodeFractionsPayload(e *Encoder, p *Position, pressed bool, bits *bitstream.BitStream) error {
	if !bits.AreBitsLeft(1) {
		return nil
	}
	for _, fraction := range []string{halfFraction, zeroFraction} {
		trial := *p
		if err := writeHalves(&trial, fraction, fraction); err != nil {
			return err
		}
		if !e.opts.Bounds.IsGoodFrame(trial, pressed) {
			*p = trial
			return nil
		}
	}
	return encodeHalvesPayload(e, p, pressed, bits)
}

// encodeHalvesPayload writes two bits per frame as a ".5" or ".0" fraction.
func encodeHalvesPayload(_ *Encoder, p *Position, _ bool, bits *bitstream.BitStream) error {
	if !bits.AreBitsLeft(1) {
		return nil
	}
	return writeHalves(p, halfFor(bits.GetBit()), halfFor(bits.GetBit()))
}

func halfFor(bit byte) string {
	if bit == '1' {
		return halfFraction
	}
	return zeroFraction
}

func writeHalves(p *Position, x, y string) error {
	if err := floatbits.ReplaceFraction(&p.X, x); err != nil {
		return err
	}
	return floatbits.ReplaceFraction(&p.Y, y)
}

func decodeHalvesPayload(d *Decoder, frame Frame) error {
	x, err := floatbits.GetFraction(frame.Position.X, 1)
	if err != nil {
		return err
	}
	y, err := floatbits.GetFraction(frame.Position.Y, 1)
	if err != nil {
		return err
	}
	d.appendBits(bitFor(x) + bitFor(y))
	return nil
}

func bitFor(fraction string) string {
	if fraction == halfFraction {
		return "1"
	}
	return "0"
}
