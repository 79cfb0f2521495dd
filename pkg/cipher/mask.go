package cipher

import (
	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
)

// flagPosition is the X mantissa bit telling the decoder a frame carries data.
const flagPosition = 0

// encodeMaskHeader writes the payload bit length into the X mantissa and the
// mask into the Y mantissa.
func encodeMaskHeader(e *Encoder, p *Position, bits *bitstream.BitStream) error {
	if e.opts.Mask < 0 || e.opts.Mask > floatbits.MantissaMask {
		return &floatbits.ErrInvalidArgument{Op: "Mask", Reason: "mask does not fit in the mantissa"}
	}
	if err := writeMantissaValue(&p.X, bits.Len()); err != nil {
		return err
	}
	return writeMantissaValue(&p.Y, e.opts.Mask)
}

func decodeMaskHeader(d *Decoder, p Position) error {
	d.messageLength = readMantissaValue(p.X)
	d.mask = readMantissaValue(p.Y)
	return nil
}

// encodeBitMaskPayload is only reached for frames without pressed actions.
func encodeBitMaskPayload(e *Encoder, p *Position, _ bool, bits *bitstream.BitStream) error {
	if e.opts.Mask == 0 || !bits.AreBitsLeft(1) {
		return nil
	}
	return writeMaskedBits(p, e.opts.Mask, e.opts.Rand.Intn(2) != 0, bits)
}

// encodeLSBMaskPayload rewrites the flag bit on every frame while bits are
// left, so a stale flag in the source position is never read as data.
func encodeLSBMaskPayload(e *Encoder, p *Position, pressed bool, bits *bitstream.BitStream) error {
	if e.opts.Mask == 0 || !bits.AreBitsLeft(1) {
		return nil
	}
	carry := !pressed && e.opts.Rand.Intn(2) != 0
	return writeMaskedBits(p, e.opts.Mask, carry, bits)
}

func writeMaskedBits(p *Position, mask int, carry bool, bits *bitstream.BitStream) error {
	flag := byte('0')
	if carry {
		flag = '1'
	}
	x, err := floatbits.SetNthMantissaBit(floatbits.GetMantissaBits(p.X), flagPosition, flag)
	if err != nil {
		return err
	}
	if err := floatbits.ReplaceMantissaBits(&p.X, x); err != nil {
		return err
	}
	if !carry {
		return nil
	}

	message := bits.GetBits(bitcodec.PopCount(mask))
	y, err := floatbits.SetMantissaBitsWithMask(floatbits.GetMantissaBits(p.Y), mask, message)
	if err != nil {
		return err
	}
	return floatbits.ReplaceMantissaBits(&p.Y, y)
}

func decodeMaskPayload(d *Decoder, frame Frame) error {
	flag, err := floatbits.GetNthMantissaBit(floatbits.GetMantissaBits(frame.Position.X), flagPosition)
	if err != nil {
		return err
	}
	if flag != '1' {
		return nil
	}
	message, err := floatbits.GetMantissaBitsWithMask(floatbits.GetMantissaBits(frame.Position.Y), d.mask)
	if err != nil {
		return err
	}
	d.appendBits(message)
	return nil
}
