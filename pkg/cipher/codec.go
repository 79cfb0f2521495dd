package cipher

import (
	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/floatbits"
)

// Phase is the protocol position of an encoder or decoder. It only moves
// forward and stays in PhasePayload once reached.
type Phase uint8

const (
	PhaseSync Phase = iota
	PhaseHeader
	PhasePayload
)

func (p Phase) String() string {
	switch p {
	case PhaseSync:
		return "sync"
	case PhaseHeader:
		return "header"
	case PhasePayload:
		return "payload"
	default:
		return "unknown"
	}
}

// codec is one row of the strategy dispatch table.
type codec struct {
	// skip reports header or payload frames that both sides pass over
	// without advancing. Nil means no frame is skipped.
	skip          func(bounds Bounds, frame Frame, phase Phase) bool
	encodeHeader  func(e *Encoder, p *Position, bits *bitstream.BitStream) error
	encodePayload func(e *Encoder, p *Position, pressed bool, bits *bitstream.BitStream) error
	decodeHeader  func(d *Decoder, p Position) error
	decodePayload func(d *Decoder, frame Frame) error
	// unbounded decoders have no declared message length.
	unbounded bool
}

var codecs = [strategyCount]codec{
	StrategyBitMask: {
		skip:          skipPressedPayload,
		encodeHeader:  encodeMaskHeader,
		encodePayload: encodeBitMaskPayload,
		decodeHeader:  decodeMaskHeader,
		decodePayload: decodeMaskPayload,
	},
	StrategyLSBMask: {
		encodeHeader:  encodeMaskHeader,
		encodePayload: encodeLSBMaskPayload,
		decodeHeader:  decodeMaskHeader,
		decodePayload: decodeMaskPayload,
	},
	StrategyFractions: {
		skip:          skipBadFrames,
		encodeHeader:  encodeFractionsHeader,
		encodePayload: encodeFractionsPayload,
		decodeHeader:  decodeFractionsHeader,
		decodePayload: decodeHalvesPayload,
	},
	StrategyHalves: {
		skip:          skipPressedPayload,
		encodeHeader:  encodeLengthHeader,
		encodePayload: encodeHalvesPayload,
		decodeHeader:  decodeLengthHeader,
		decodePayload: decodeHalvesPayload,
	},
	StrategyDecimalPosition: {
		skip:          skipPressedPayload,
		encodeHeader:  encodeDigitHeader,
		encodePayload: encodeDecimalPositionPayload,
		decodeHeader:  decodeDigitHeader,
		decodePayload: decodeDecimalPositionPayload,
	},
	StrategyLetterMapping: {
		encodeHeader:  encodeDigitHeader,
		encodePayload: encodeLetterMappingPayload,
		decodeHeader:  decodeDigitHeader,
		decodePayload: decodeLetterMappingPayload,
	},
	StrategyNetworkTest: {
		encodeHeader:  encodeNetworkTestHeader,
		encodePayload: encodeNetworkTestPayload,
		decodeHeader:  decodeNetworkTestHeader,
		decodePayload: decodeNetworkTestPayload,
		unbounded:     true,
	},
}

func skipPressedPayload(_ Bounds, frame Frame, phase Phase) bool {
	return phase == PhasePayload && frame.ActionsPressed
}

func skipBadFrames(bounds Bounds, frame Frame, _ Phase) bool {
	return !bounds.IsGoodFrame(frame.Position, frame.ActionsPressed)
}

func writeSyncKey(p *Position, key string) error {
	if err := floatbits.ReplaceFullBits(&p.X, key[:32]); err != nil {
		return err
	}
	return floatbits.ReplaceFullBits(&p.Y, key[32:])
}

// writeMantissaValue stores v in the whole mantissa of x. Values wider than
// the mantissa are rejected by floatbits.
func writeMantissaValue(x *float32, v int) error {
	return floatbits.ReplaceMantissaBits(x, bitcodec.FormatBits(v, floatbits.MantissaLength))
}

func readMantissaValue(x float32) int {
	return bitcodec.ParseBitString(floatbits.GetMantissaBits(x))
}

// encodeLengthHeader writes the payload bit length into the X mantissa.
func encodeLengthHeader(_ *Encoder, p *Position, bits *bitstream.BitStream) error {
	return writeMantissaValue(&p.X, bits.Len())
}

func decodeLengthHeader(d *Decoder, p Position) error {
	d.messageLength = readMantissaValue(p.X)
	return nil
}
